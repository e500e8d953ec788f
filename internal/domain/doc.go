// Package domain contains the core business entities and domain logic of
// the memo generation service: deals, memo jobs, and their sections. It is
// independent of any specific infrastructure or delivery mechanism.
package domain
