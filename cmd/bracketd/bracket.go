package main

import (
	"encoding/json"
	"errors"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/Dosada05/event-brackets/brackets"
	"github.com/Dosada05/event-brackets/services"
)

var (
	bracketTournamentID int
	bracketSeedMethod   string
	bracketReplace      bool
	bracketMatchID      int
	bracketWinnerID     int
)

var bracketCmd = &cobra.Command{
	Use:   "bracket",
	Short: "Manage a tournament bracket directly against the database",
}

var bracketGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Seed participants and generate the single elimination bracket",
	RunE: func(cmd *cobra.Command, args []string) error {
		method, err := brackets.ParseSeedMethod(bracketSeedMethod)
		if err != nil {
			return err
		}
		return withService(func(svc services.BracketService) (interface{}, error) {
			return svc.GenerateBracket(cmd.Context(), services.GenerateBracketInput{
				TournamentID: bracketTournamentID,
				Method:       method,
				Replace:      bracketReplace,
			})
		})
	},
}

var bracketAdvanceCmd = &cobra.Command{
	Use:   "advance",
	Short: "Record the winner of a match and advance them",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(func(svc services.BracketService) (interface{}, error) {
			return svc.RecordWinner(cmd.Context(), bracketMatchID, bracketWinnerID)
		})
	},
}

var bracketShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the bracket grouped by round",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(func(svc services.BracketService) (interface{}, error) {
			return svc.GetBracket(cmd.Context(), bracketTournamentID)
		})
	},
}

var bracketDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete every match of the tournament bracket",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(func(svc services.BracketService) (interface{}, error) {
			deleted, err := svc.DeleteBracket(cmd.Context(), bracketTournamentID)
			return map[string]int64{"deleted_matches": deleted}, err
		})
	},
}

func init() {
	for _, c := range []*cobra.Command{bracketGenerateCmd, bracketShowCmd, bracketDeleteCmd} {
		c.Flags().IntVar(&bracketTournamentID, "tournament", 0, "tournament id")
		_ = c.MarkFlagRequired("tournament")
	}
	bracketGenerateCmd.Flags().StringVar(&bracketSeedMethod, "method", string(brackets.SeedBySignup), "seed method: signup, points or random")
	bracketGenerateCmd.Flags().BoolVar(&bracketReplace, "replace", false, "delete the existing bracket first")

	bracketAdvanceCmd.Flags().IntVar(&bracketMatchID, "match", 0, "match id")
	bracketAdvanceCmd.Flags().IntVar(&bracketWinnerID, "winner", 0, "winning participant id")
	_ = bracketAdvanceCmd.MarkFlagRequired("match")
	_ = bracketAdvanceCmd.MarkFlagRequired("winner")

	bracketCmd.AddCommand(bracketGenerateCmd, bracketAdvanceCmd, bracketShowCmd, bracketDeleteCmd)
}

func withService(fn func(svc services.BracketService) (interface{}, error)) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	a, err := newApp(cfg, logger, nil, prometheus.NewRegistry())
	if err != nil {
		return err
	}
	defer a.Close(logger)

	out, err := fn(a.bracketService)
	if err != nil {
		if errors.Is(err, services.ErrAdvancementConflict) {
			logger.Warn("the next match already has two participants; check the bracket before retrying")
		}
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
