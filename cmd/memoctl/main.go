// Command memoctl is a CLI for the deal memo API: create deals, launch memo
// generation, and follow job progress by polling or streaming.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli/v3"

	"github.com/cdandre/dealmemo-api/internal/client"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &cli.Command{
		Name:  "memoctl",
		Usage: "manage venture deals and memo generation jobs",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "url",
				Usage: "API base URL",
				Value: envOr("DEALMEMO_API_URL", "http://localhost:8080"),
			},
			&cli.StringFlag{
				Name:  "token",
				Usage: "bearer token for the API",
				Value: os.Getenv("DEALMEMO_API_TOKEN"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "deal",
				Usage: "manage deals",
				Commands: []*cli.Command{
					{
						Name:  "create",
						Usage: "create a new deal",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "name", Usage: "deal name", Required: true},
							&cli.StringFlag{Name: "company", Usage: "company name", Required: true},
							&cli.StringFlag{Name: "stage", Usage: "investment stage", Required: true},
							&cli.StringFlag{Name: "description", Usage: "deal description", Required: true},
						},
						Action: dealCreateAction,
					},
					{
						Name:   "list",
						Usage:  "list deals",
						Action: dealListAction,
					},
				},
			},
			{
				Name:  "memo",
				Usage: "manage memo generation jobs",
				Commands: []*cli.Command{
					{
						Name:      "generate",
						Usage:     "launch memo generation for a deal and wait for the result",
						ArgsUsage: "<deal-id>",
						Flags: []cli.Flag{
							&cli.BoolFlag{
								Name:  "follow",
								Usage: "keep polling if the server's wait window expires",
								Value: true,
							},
						},
						Action: memoGenerateAction,
					},
					{
						Name:      "status",
						Usage:     "show the current status of a memo job",
						ArgsUsage: "<job-id>",
						Action:    memoStatusAction,
					},
					{
						Name:      "watch",
						Usage:     "poll a memo job until it finishes",
						ArgsUsage: "<job-id>",
						Flags: []cli.Flag{
							&cli.DurationFlag{
								Name:  "interval",
								Usage: "pause between polls",
								Value: 3 * time.Second,
							},
						},
						Action: memoWatchAction,
					},
					{
						Name:      "stream",
						Usage:     "stream a memo job's progress over server-sent events",
						ArgsUsage: "<job-id>",
						Action:    memoStreamAction,
					},
				},
			},
		},
	}

	if err := app.Run(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func newClient(cmd *cli.Command) *client.Client {
	return client.New(cmd.String("url"), cmd.String("token"))
}

func argUUID(cmd *cli.Command, usage string) (uuid.UUID, error) {
	raw := cmd.Args().First()
	if raw == "" {
		return uuid.Nil, fmt.Errorf("missing argument: %s", usage)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s: %w", usage, err)
	}
	return id, nil
}

func dealCreateAction(ctx context.Context, cmd *cli.Command) error {
	deal, err := newClient(cmd).CreateDeal(ctx, client.CreateDealRequest{
		Name:        cmd.String("name"),
		Company:     cmd.String("company"),
		Stage:       cmd.String("stage"),
		Description: cmd.String("description"),
	})
	if err != nil {
		return err
	}

	fmt.Printf("Created deal %s (%s, %s)\n", deal.ID, deal.Company, deal.Stage)
	return nil
}

func dealListAction(ctx context.Context, cmd *cli.Command) error {
	list, err := newClient(cmd).ListDeals(ctx, 50, 0)
	if err != nil {
		return err
	}

	if len(list.Deals) == 0 {
		fmt.Println("No deals found")
		return nil
	}

	for _, deal := range list.Deals {
		fmt.Printf("%s  %-30s %-20s %s\n", deal.ID, deal.Name, deal.Company, deal.Stage)
	}
	return nil
}

func memoGenerateAction(ctx context.Context, cmd *cli.Command) error {
	dealID, err := argUUID(cmd, "deal-id")
	if err != nil {
		return err
	}

	c := newClient(cmd)
	fmt.Printf("Launching memo generation for deal %s\n", dealID)

	job, err := c.StartGeneration(ctx, dealID)
	if errors.Is(err, client.ErrStillRunning) {
		fmt.Printf("Generation still running after the wait window (job %s, %.1f%%)\n",
			job.JobID, job.Progress)
		if !cmd.Bool("follow") {
			return nil
		}

		job, err = pollJob(ctx, c, job.JobID, 3*time.Second)
	}
	if err != nil {
		return err
	}

	return printJobResult(job)
}

func memoStatusAction(ctx context.Context, cmd *cli.Command) error {
	jobID, err := argUUID(cmd, "job-id")
	if err != nil {
		return err
	}

	job, err := newClient(cmd).GetMemoStatus(ctx, jobID)
	if err != nil {
		return err
	}

	fmt.Printf("Job %s for deal %s: %s (%.1f%%)\n", job.JobID, job.DealID, job.Status, job.Progress)
	for _, section := range job.Sections {
		fmt.Printf("  %-20s %s\n", section.SectionType, section.Status)
	}
	return nil
}

func memoWatchAction(ctx context.Context, cmd *cli.Command) error {
	jobID, err := argUUID(cmd, "job-id")
	if err != nil {
		return err
	}

	job, err := pollJob(ctx, newClient(cmd), jobID, cmd.Duration("interval"))
	if err != nil {
		return err
	}

	return printJobResult(job)
}

func memoStreamAction(ctx context.Context, cmd *cli.Command) error {
	jobID, err := argUUID(cmd, "job-id")
	if err != nil {
		return err
	}

	var final *client.MemoJob
	err = newClient(cmd).StreamMemoStatus(ctx, jobID, client.StreamHandlers{
		OnProgress: func(job *client.MemoJob) {
			fmt.Printf("progress: %.1f%% (%s)\n", job.Progress, job.Status)
		},
		OnComplete: func(job *client.MemoJob) {
			final = job
		},
		OnError: func(message string) {
			fmt.Fprintf(os.Stderr, "stream error: %s\n", message)
		},
	})
	if err != nil {
		return err
	}

	return printJobResult(final)
}

func pollJob(ctx context.Context, c *client.Client, jobID uuid.UUID, interval time.Duration) (*client.MemoJob, error) {
	poller := client.NewPoller(c, interval, nil)
	return poller.Poll(ctx, jobID, client.PollHandlers{
		OnUpdate: func(job *client.MemoJob) {
			fmt.Printf("progress: %.1f%% (%s)\n", job.Progress, job.Status)
		},
		OnError: func(err error) {
			fmt.Fprintf(os.Stderr, "poll error: %v\n", err)
		},
	})
}

func printJobResult(job *client.MemoJob) error {
	if job == nil {
		return errors.New("no job result received")
	}

	fmt.Printf("\nJob %s finished: %s\n", job.JobID, job.Status)
	if job.Error != "" {
		fmt.Printf("Error: %s\n", job.Error)
	}

	if len(job.Content) > 0 {
		// Print sections in display order when available.
		order := make(map[string]int, len(job.Sections))
		for _, section := range job.Sections {
			order[section.SectionType] = section.Order
		}
		types := make([]string, 0, len(job.Content))
		for sectionType := range job.Content {
			types = append(types, sectionType)
		}
		sort.Slice(types, func(i, j int) bool {
			return order[types[i]] < order[types[j]]
		})

		for _, sectionType := range types {
			fmt.Printf("\n## %s\n\n%s\n", sectionType, job.Content[sectionType])
		}
		return nil
	}

	// No content to print; show the raw job record for diagnostics.
	encoded, err := json.MarshalIndent(job, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(encoded))
	return nil
}
