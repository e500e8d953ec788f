// Command mint-token generates a development bearer token for exercising the
// API locally. Production tokens come from the external auth service; this
// helper exists so local instances can be called without it.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/cdandre/dealmemo-api/internal/config"
	"github.com/cdandre/dealmemo-api/internal/service/auth"
)

func main() {
	subject := flag.String("subject", "", "subject ID for the token (default: random)")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("no .env file loaded: %v", err)
	}

	authCfg, err := config.LoadAuth()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	subjectID := uuid.New()
	if *subject != "" {
		subjectID, err = uuid.Parse(*subject)
		if err != nil {
			log.Fatalf("invalid subject ID: %v", err)
		}
	}

	jwtService, err := auth.NewJWTService(*authCfg)
	if err != nil {
		log.Fatalf("failed to initialize JWT service: %v", err)
	}

	token, err := jwtService.GenerateToken(context.Background(), subjectID)
	if err != nil {
		log.Fatalf("failed to generate token: %v", err)
	}

	fmt.Printf("Subject: %s\nToken:   %s\n", subjectID, token)
}
