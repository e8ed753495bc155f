package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Dosada05/tennis-roundrobin/brackets"
	"github.com/Dosada05/tennis-roundrobin/config"
	"github.com/Dosada05/tennis-roundrobin/models"
	"github.com/Dosada05/tennis-roundrobin/scoring"
	"github.com/Dosada05/tennis-roundrobin/services"
	"github.com/Dosada05/tennis-roundrobin/utils"
)

var (
	schedulePlayers []string
	scheduleRules   string
)

var scheduleCmd = &cobra.Command{
	Use:     "schedule",
	Short:   "Print the round-robin schedule and fairness report for a roster",
	Example: `  roundrobin schedule --player Anna --player Max --player Tom --player Lisa`,
	RunE:    runSchedule,
}

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password [password]",
	Short: "Print a bcrypt hash for ORGANIZER_PASSWORD_HASH",
	Long:  `Hashes the password given as argument, or the first line of stdin when no argument is given.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runHashPassword,
}

func init() {
	scheduleCmd.Flags().StringArrayVarP(&schedulePlayers, "player", "p", nil, "player name (repeat for each player)")
	scheduleCmd.Flags().StringVar(&scheduleRules, "rules", "", "path to a YAML scoring rules file")
	_ = scheduleCmd.MarkFlagRequired("player")
}

type scheduleOutput struct {
	Rounds   []models.Round            `json:"rounds"`
	Days     []*models.Day             `json:"days"`
	Capacity int                       `json:"capacity"`
	Fairness []brackets.PlayerFairness `json:"fairness"`
}

func runSchedule(cmd *cobra.Command, args []string) error {
	rules := scoring.DefaultRules()
	if scheduleRules != "" {
		var err error
		if rules, err = config.LoadRules(scheduleRules); err != nil {
			return err
		}
	}

	state, err := services.NewTournamentState("cli", "cli", schedulePlayers, rules)
	if err != nil {
		return err
	}
	if err := state.GenerateSchedule(brackets.NewRoundRobinGenerator()); err != nil {
		return err
	}

	out := scheduleOutput{
		Rounds:   state.Schedule.Rounds,
		Days:     state.Schedule.Days,
		Capacity: state.Schedule.Capacity,
		Fairness: state.Fairness(),
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func runHashPassword(cmd *cobra.Command, args []string) error {
	var password string
	if len(args) == 1 {
		password = args[0]
	} else {
		scanner := bufio.NewScanner(cmd.InOrStdin())
		if scanner.Scan() {
			password = strings.TrimRight(scanner.Text(), "\r\n")
		}
		if err := scanner.Err(); err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
	}
	if password == "" {
		return errors.New("password must not be empty")
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), hash)
	return nil
}
