package gemini

import (
	"bytes"
	"errors"
	"fmt"
	"text/template"

	"github.com/cdandre/dealmemo-api/internal/domain"
)

// ErrEmptyDeal is returned when the deal has no content to write about.
var ErrEmptyDeal = errors.New("deal cannot be empty")

// promptData carries the fields substituted into the prompt template.
type promptData struct {
	DealName    string
	Company     string
	Stage       string
	Description string
	Section     string
	Instruction string
}

// sectionInstructions maps each memo section type to the writing brief
// handed to the model for that section.
var sectionInstructions = map[domain.SectionType]string{
	domain.SectionExecutiveSummary: "Summarize the investment opportunity in two short paragraphs, covering what the company does, why now, and the headline recommendation.",
	domain.SectionCompanyOverview:  "Describe the company's history, founding story, current scale, and what it sells.",
	domain.SectionMarketAnalysis:   "Analyze the target market, its size and growth, and the dynamics that make it attractive or risky.",
	domain.SectionProduct:          "Assess the product or service, its maturity, differentiation, and technical moat.",
	domain.SectionBusinessModel:    "Explain how the company makes money, its pricing, unit economics, and the scalability of the model.",
	domain.SectionTraction:         "Discuss traction to date: customers, growth metrics, retention, and any proof points mentioned.",
	domain.SectionTeam:             "Evaluate the founding team and key hires, their track record, and any notable gaps.",
	domain.SectionCompetition:      "Map the competitive landscape, naming direct and adjacent competitors and how the company is positioned against them.",
	domain.SectionFinancials:       "Review the financial picture, including revenue trajectory, burn, margins, and capital efficiency, to the extent the description supports it.",
	domain.SectionRisks:            "Identify the principal risks of the investment and how each might be mitigated.",
	domain.SectionDealTerms:        "Outline the proposed deal terms and how they compare to stage norms.",
	domain.SectionRecommendation:   "Close with a clear recommendation and the two or three factors it hinges on.",
}

// promptTemplate is the shared frame wrapped around every section brief.
var promptTemplate = template.Must(template.New("section").Parse(
	`You are an experienced venture capital analyst writing one section of an internal deal memo.

Deal: {{.DealName}}
Company: {{.Company}}
Stage: {{.Stage}}

Background:
{{.Description}}

Write the "{{.Section}}" section of the memo. {{.Instruction}}

Write in measured, professional prose. Do not use headings or bullet lists. Do not mention that you are an AI or that information is limited; work with what is given.`))

// buildPrompt renders the prompt for one section of the memo.
func buildPrompt(deal *domain.Deal, sectionType domain.SectionType) (string, error) {
	if deal == nil || (deal.Description == "" && deal.Name == "") {
		return "", ErrEmptyDeal
	}

	instruction, ok := sectionInstructions[sectionType]
	if !ok {
		return "", fmt.Errorf("%w: %s", domain.ErrInvalidSectionType, sectionType)
	}

	data := promptData{
		DealName:    deal.Name,
		Company:     deal.Company,
		Stage:       deal.Stage,
		Description: deal.Description,
		Section:     string(sectionType),
		Instruction: instruction,
	}

	var buf bytes.Buffer
	if err := promptTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute prompt template: %w", err)
	}

	return buf.String(), nil
}
