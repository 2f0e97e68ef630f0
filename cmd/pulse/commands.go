package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/joho/godotenv"
	"github.com/spf13/afero"
	"github.com/urfave/cli/v3"
	"github.com/vytor/conceptpulse/internal/deck"
	"github.com/vytor/conceptpulse/internal/flashcard"
	"github.com/vytor/conceptpulse/internal/services"
)

func newRootCommand(fs afero.Fs, stdin io.Reader, stdout, stderr io.Writer) *cli.Command {
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	return &cli.Command{
		Name:      "pulse",
		Usage:     "Study and manage a spaced-repetition card deck",
		Reader:    stdin,
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "db",
				Usage:   "SQLite database path",
				Value:   "file:conceptpulse.db",
				Sources: cli.EnvVars("DB_PATH"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "warn",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
			&cli.IntFlag{
				Name:    "limit-cap",
				Usage:   "Maximum number of due cards listed at once",
				Value:   100,
				Sources: cli.EnvVars("DUE_LIMIT"),
			},
		},
		Commands: []*cli.Command{
			newAddCommand(fs),
			newDueCommand(fs),
			newReviewCommand(fs),
			newImportCommand(fs),
			newExportCommand(fs),
			newDomainsCommand(fs),
			newStatsCommand(fs),
		},
	}
}

func newAddCommand(fs afero.Fs) *cli.Command {
	return &cli.Command{
		Name:      "add",
		Usage:     "Author a new card",
		ArgsUsage: "<prompt> <answer>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "domain", Aliases: []string{"d"}, Usage: "Subject area"},
			&cli.StringFlag{Name: "topics", Usage: "Related topics"},
			&cli.StringFlag{Name: "difficulty", Usage: "Author-assigned difficulty"},
			&cli.StringFlag{Name: "notes", Usage: "Free-form notes"},
		},
		Action: withApp(fs, func(ctx context.Context, command *cli.Command, a *app) error {
			if command.Args().Len() != 2 {
				return fmt.Errorf("add expects <prompt> <answer>, got %d argument(s)", command.Args().Len())
			}
			card, err := a.cards.Create(ctx, services.CardInput{
				Prompt:         command.Args().Get(0),
				Answer:         command.Args().Get(1),
				Domain:         command.String("domain"),
				RelatedTopics:  command.String("topics"),
				BaseDifficulty: command.String("difficulty"),
				Notes:          command.String("notes"),
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(command.Root().Writer, "added card %d\n", card.ID)
			return nil
		}),
	}
}

func newDueCommand(fs afero.Fs) *cli.Command {
	return &cli.Command{
		Name:  "due",
		Usage: "List cards due for review",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "domain", Aliases: []string{"d"}, Usage: "Only cards in this domain"},
			&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Usage: "Maximum cards to list"},
		},
		Action: withApp(fs, func(ctx context.Context, command *cli.Command, a *app) error {
			cards, err := a.cards.Due(ctx, command.String("domain"), int(command.Int("limit")))
			if err != nil {
				return err
			}
			out := command.Root().Writer
			if len(cards) == 0 {
				fmt.Fprintln(out, "nothing due")
				return nil
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tDOMAIN\tLAST\tPROMPT")
			for _, c := range cards {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", c.ID, orDash(c.Domain), orDash(c.LastDifficultyTag), truncate(c.Prompt, 60))
			}
			return tw.Flush()
		}),
	}
}

func newReviewCommand(fs afero.Fs) *cli.Command {
	return &cli.Command{
		Name:      "review",
		Usage:     "Record a review, or study the due queue interactively",
		ArgsUsage: "[<card-id> <quality 0-3>]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "domain", Aliases: []string{"d"}, Usage: "Study only this domain"},
		},
		Action: withApp(fs, func(ctx context.Context, command *cli.Command, a *app) error {
			out := command.Root().Writer
			switch command.Args().Len() {
			case 0:
				return study(ctx, a, command.String("domain"), command.Root().Reader, out)
			case 2:
				id, err := strconv.ParseInt(command.Args().Get(0), 10, 64)
				if err != nil {
					return fmt.Errorf("invalid card id %q", command.Args().Get(0))
				}
				q, err := strconv.Atoi(command.Args().Get(1))
				if err != nil {
					return fmt.Errorf("invalid quality %q", command.Args().Get(1))
				}
				outcome, err := a.reviews.Review(ctx, id, q, 0)
				if err != nil {
					return err
				}
				printOutcome(out, outcome)
				return nil
			default:
				return fmt.Errorf("review expects no arguments or <card-id> <quality>")
			}
		}),
	}
}

// study walks the due queue: show the prompt, reveal the answer on Enter,
// then read a quality rating. An empty rating or "q" ends the session.
func study(ctx context.Context, a *app, domain string, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	reviewed := 0
	for {
		next, err := a.cards.Next(ctx, domain)
		if err != nil {
			return err
		}
		if next.Card == nil {
			fmt.Fprintf(out, "no cards due, reviewed %d\n", reviewed)
			return nil
		}

		c := next.Card
		fmt.Fprintf(out, "\n[%d due] %s\n", next.Due, c.Prompt)
		fmt.Fprint(out, "press Enter to reveal the answer")
		if !scanner.Scan() {
			return scanner.Err()
		}
		fmt.Fprintf(out, "answer: %s\n", c.Answer)
		if c.Notes != nil {
			fmt.Fprintf(out, "notes: %s\n", *c.Notes)
		}

		fmt.Fprint(out, "rate 0=Forgotten 1=Struggled 2=Successful Recall 3=Effortless Recall (q to quit): ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		answer := strings.TrimSpace(scanner.Text())
		if answer == "" || strings.EqualFold(answer, "q") {
			fmt.Fprintf(out, "stopped, reviewed %d\n", reviewed)
			return nil
		}
		q, err := strconv.Atoi(answer)
		if err != nil || !flashcard.Quality(q).Valid() {
			fmt.Fprintf(out, "invalid rating %q, skipping\n", answer)
			continue
		}

		outcome, err := a.reviews.Review(ctx, c.ID, q, 0)
		if err != nil {
			return err
		}
		printOutcome(out, outcome)
		reviewed++
	}
}

func printOutcome(out io.Writer, o *services.ReviewOutcome) {
	fmt.Fprintf(out, "card %d: %s, next review in %s (ease %.2f, repetitions %d)\n",
		o.CardID, o.Result.DifficultyTag, o.NextIn, o.Result.EaseFactor, o.Result.Repetitions)
}

func newImportCommand(fs afero.Fs) *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "Import a YAML or JSON deck file",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "max-bytes", Value: 4 << 20, Usage: "Reject larger deck files", Sources: cli.EnvVars("MAX_DECK_BYTES")},
		},
		Action: withApp(fs, func(ctx context.Context, command *cli.Command, a *app) error {
			path := command.Args().First()
			if path == "" {
				return fmt.Errorf("import expects a deck file")
			}
			d, err := deck.Load(a.fs, path, int64(command.Int("max-bytes")))
			if err != nil {
				return err
			}
			res, err := a.decks.Import(ctx, d)
			if err != nil {
				return err
			}
			fmt.Fprintf(command.Root().Writer, "imported %d card(s) from %s\n", res.Imported, path)
			return nil
		}),
	}
}

func newExportCommand(fs afero.Fs) *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     "Export cards with their schedule to a YAML or JSON file",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "domain", Aliases: []string{"d"}, Usage: "Only cards in this domain"},
		},
		Action: withApp(fs, func(ctx context.Context, command *cli.Command, a *app) error {
			path := command.Args().First()
			if path == "" {
				return fmt.Errorf("export expects an output file")
			}
			d, err := a.decks.Export(ctx, command.String("domain"))
			if err != nil {
				return err
			}
			if err := deck.Save(a.fs, path, d); err != nil {
				return err
			}
			fmt.Fprintf(command.Root().Writer, "exported %d card(s) to %s\n", len(d.Cards), path)
			return nil
		}),
	}
}

func newDomainsCommand(fs afero.Fs) *cli.Command {
	return &cli.Command{
		Name:  "domains",
		Usage: "List domains",
		Action: withApp(fs, func(ctx context.Context, command *cli.Command, a *app) error {
			domains, err := a.cards.Domains(ctx)
			if err != nil {
				return err
			}
			for _, d := range domains {
				fmt.Fprintln(command.Root().Writer, d)
			}
			return nil
		}),
	}
}

func newStatsCommand(fs afero.Fs) *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "Show deck statistics",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "domain", Aliases: []string{"d"}, Usage: "Only cards in this domain"},
		},
		Action: withApp(fs, func(ctx context.Context, command *cli.Command, a *app) error {
			o, err := a.stats.Overview(ctx, command.String("domain"))
			if err != nil {
				return err
			}
			out := command.Root().Writer
			fmt.Fprintf(out, "cards: %d (due %d, new %d)\n", o.TotalCards, o.DueCards, o.NewCards)
			fmt.Fprintf(out, "reviews: %d, success rate %.0f%%\n", o.TotalReviews, o.SuccessRate*100)
			fmt.Fprintf(out, "average ease %.2f, average interval %s\n", o.AvgEaseFactor, flashcard.FormatMinutes(int(o.AvgIntervalMinutes)))
			for _, t := range o.Tags {
				fmt.Fprintf(out, "  %s: %d\n", t.Tag, t.Cards)
			}

			if command.String("domain") != "" {
				return nil
			}
			perDomain, err := a.stats.Domains(ctx)
			if err != nil {
				return err
			}
			if len(perDomain) == 0 {
				return nil
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "DOMAIN\tCARDS\tDUE\tSUCCESS")
			for _, d := range perDomain {
				fmt.Fprintf(tw, "%s\t%d\t%d\t%.0f%%\n", d.Domain, d.TotalCards, d.DueCards, d.SuccessRate*100)
			}
			return tw.Flush()
		}),
	}
}

func orDash(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

