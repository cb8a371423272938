package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	auditchain "github.com/scrimforge/roster/internal/audit/chain"
	common "github.com/scrimforge/roster/internal/cli/common"
	"github.com/scrimforge/roster/internal/db"
	"github.com/scrimforge/roster/internal/lock"
	"github.com/scrimforge/roster/internal/policy"
	repo "github.com/scrimforge/roster/internal/repo/gorm/roster"
	svc "github.com/scrimforge/roster/internal/service/roster"
	"github.com/scrimforge/roster/internal/tournament"
)

func main() {
	var cfgFile string
	root := &cobra.Command{
		Use:   "rosterctl",
		Short: "Roster engine admin CLI",
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (yaml), e.g. configs/rosterctl.yaml")
	root.PersistentFlags().String("db.dsn", "", "database DSN/URL; for sqlite can be file:path.db or :memory:")
	root.PersistentFlags().String("policies", "", "policy overlay json, e.g. configs/policies.json")
	root.PersistentFlags().String("audit.file", "", "audit trail path (jsonl); empty disables the trail")
	root.PersistentFlags().String("log.level", "info", "log level: debug|info|warn|error")
	root.PersistentFlags().String("log.format", "console", "log format: console|json")
	root.PersistentFlags().String("log.file", "", "log file path; empty logs to stderr")
	_ = viper.BindPFlags(root.PersistentFlags())

	cobra.OnInitialize(func() {
		viper.SetEnvPrefix("ROSTER")
		viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
		viper.AutomaticEnv()
		if cfgFile != "" {
			viper.SetConfigFile(cfgFile)
			if err := viper.ReadInConfig(); err != nil {
				slog.Warn("read config", "error", err)
			}
		}
		common.SetupLoggerFromViper(viper.GetViper())
	})

	root.AddCommand(teamCmd())
	root.AddCommand(rosterCmd())
	root.AddCommand(policyCmd())
	root.AddCommand(auditCmd())

	if err := root.Execute(); err != nil {
		slog.Error("rosterctl exit", "error", err)
		os.Exit(1)
	}
}

// setup wires the manager from the effective config.
func setup() (*svc.Manager, func(), error) {
	gdb, err := db.Open(viper.GetString("db.dsn"))
	if err != nil {
		return nil, nil, fmt.Errorf("open db: %w", err)
	}
	if err := repo.AutoMigrate(gdb); err != nil {
		return nil, nil, fmt.Errorf("migrate: %w", err)
	}

	reg := policy.NewRegistry()
	if p := viper.GetString("policies"); p != "" {
		if err := reg.LoadOverlayFile(p); err != nil {
			return nil, nil, err
		}
	}

	opts := []svc.Option{}
	cleanup := func() {}
	if p := viper.GetString("audit.file"); p != "" {
		aw, err := auditchain.NewWriter(p)
		if err != nil {
			return nil, nil, fmt.Errorf("audit: %w", err)
		}
		opts = append(opts, svc.WithAudit(aw))
		cleanup = func() { _ = aw.Close() }
	}

	mgr := svc.NewManager(repo.NewRepo(gdb), reg, lock.FromEnv(), tournament.FromEnv(), opts...)
	return mgr, cleanup, nil
}

func printJSON(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}

func teamCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "team", Short: "Team management"}

	create := &cobra.Command{Use: "create", Short: "Create a team for a game"}
	var name, tag, slug, game string
	var captain uint
	create.Flags().StringVar(&name, "name", "", "team name")
	create.Flags().StringVar(&tag, "tag", "", "short tag")
	create.Flags().StringVar(&slug, "slug", "", "url slug (derived from name when empty)")
	create.Flags().StringVar(&game, "game", "", "game code, e.g. league, cs2, valorant")
	create.Flags().UintVar(&captain, "captain", 0, "captain player id (optional)")
	create.RunE = func(cmd *cobra.Command, args []string) error {
		mgr, cleanup, err := setup()
		if err != nil {
			return err
		}
		defer cleanup()
		in := svc.CreateTeamInput{Name: name, Tag: tag, Slug: slug, GameCode: game}
		if captain != 0 {
			in.CaptainPlayerID = &captain
		}
		res, err := mgr.CreateTeam(context.Background(), in)
		if err != nil {
			return err
		}
		if res.CaptainBootstrapErr != nil {
			slog.Warn("captain bootstrap", "error", res.CaptainBootstrapErr)
		}
		return printJSON(res.Team)
	}
	cmd.AddCommand(create)

	ensure := &cobra.Command{Use: "ensure-captain", Short: "Repair the captain membership invariant"}
	var teamID uint
	ensure.Flags().UintVar(&teamID, "team", 0, "team id")
	ensure.RunE = func(cmd *cobra.Command, args []string) error {
		mgr, cleanup, err := setup()
		if err != nil {
			return err
		}
		defer cleanup()
		res, err := mgr.EnsureCaptainMembership(context.Background(), teamID)
		if err != nil {
			return err
		}
		return printJSON(res)
	}
	cmd.AddCommand(ensure)

	return cmd
}

func rosterCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "roster", Short: "Roster mutations and queries"}
	var teamID, playerID uint
	cmd.PersistentFlags().UintVar(&teamID, "team", 0, "team id")
	cmd.PersistentFlags().UintVar(&playerID, "player", 0, "player id")

	withMgr := func(fn func(mgr *svc.Manager) error) error {
		mgr, cleanup, err := setup()
		if err != nil {
			return err
		}
		defer cleanup()
		return fn(mgr)
	}

	add := &cobra.Command{Use: "add", Short: "Add a player"}
	var role, secondary, ign string
	var starter, pending bool
	add.Flags().StringVar(&role, "role", "", "primary role")
	add.Flags().StringVar(&secondary, "secondary", "", "secondary role")
	add.Flags().StringVar(&ign, "ign", "", "in-game name")
	add.Flags().BoolVar(&starter, "starter", false, "join the starting lineup")
	add.Flags().BoolVar(&pending, "pending", false, "create as pending approval")
	add.RunE = func(cmd *cobra.Command, args []string) error {
		return withMgr(func(mgr *svc.Manager) error {
			ms, err := mgr.AddPlayer(context.Background(), svc.AddPlayerInput{
				TeamID: teamID, PlayerID: playerID,
				Role: role, SecondaryRole: secondary,
				IsStarter: starter, IGN: ign, AsPending: pending,
			})
			if err != nil {
				return err
			}
			return printJSON(ms)
		})
	}

	approve := &cobra.Command{Use: "approve", Short: "Approve a pending membership"}
	approve.RunE = func(cmd *cobra.Command, args []string) error {
		return withMgr(func(mgr *svc.Manager) error {
			ms, err := mgr.ApprovePending(context.Background(), teamID, playerID)
			if err != nil {
				return err
			}
			return printJSON(ms)
		})
	}

	remove := &cobra.Command{Use: "remove", Short: "Remove a player"}
	remove.RunE = func(cmd *cobra.Command, args []string) error {
		return withMgr(func(mgr *svc.Manager) error {
			return mgr.RemovePlayer(context.Background(), teamID, playerID)
		})
	}

	promote := &cobra.Command{Use: "promote", Short: "Promote a substitute to starter"}
	promote.RunE = func(cmd *cobra.Command, args []string) error {
		return withMgr(func(mgr *svc.Manager) error {
			return mgr.PromoteToStarter(context.Background(), teamID, playerID)
		})
	}

	demote := &cobra.Command{Use: "demote", Short: "Demote a starter to substitute"}
	demote.RunE = func(cmd *cobra.Command, args []string) error {
		return withMgr(func(mgr *svc.Manager) error {
			return mgr.DemoteToSubstitute(context.Background(), teamID, playerID)
		})
	}

	transfer := &cobra.Command{Use: "transfer-captain", Short: "Transfer captaincy to a member"}
	transfer.RunE = func(cmd *cobra.Command, args []string) error {
		return withMgr(func(mgr *svc.Manager) error {
			return mgr.TransferCaptaincy(context.Background(), teamID, playerID)
		})
	}

	changeRole := &cobra.Command{Use: "change-role", Short: "Change a member's role"}
	var newRole, newSecondary string
	changeRole.Flags().StringVar(&newRole, "role", "", "new primary role")
	changeRole.Flags().StringVar(&newSecondary, "secondary", "", "new secondary role")
	changeRole.RunE = func(cmd *cobra.Command, args []string) error {
		return withMgr(func(mgr *svc.Manager) error {
			return mgr.ChangeRole(context.Background(), teamID, playerID, newRole, newSecondary)
		})
	}

	status := &cobra.Command{Use: "status", Short: "Roster summary"}
	status.RunE = func(cmd *cobra.Command, args []string) error {
		return withMgr(func(mgr *svc.Manager) error {
			st, err := mgr.GetRosterStatus(context.Background(), teamID)
			if err != nil {
				return err
			}
			return printJSON(st)
		})
	}

	validate := &cobra.Command{Use: "validate", Short: "Tournament readiness report"}
	validate.RunE = func(cmd *cobra.Command, args []string) error {
		return withMgr(func(mgr *svc.Manager) error {
			rep, err := mgr.ValidateForTournament(context.Background(), teamID)
			if err != nil {
				return err
			}
			return printJSON(rep)
		})
	}

	cmd.AddCommand(add, approve, remove, promote, demote, transfer, changeRole, status, validate)
	return cmd
}

func policyCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "policy", Short: "Roster policies"}

	newReg := func() (*policy.Registry, error) {
		reg := policy.NewRegistry()
		if p := viper.GetString("policies"); p != "" {
			if err := reg.LoadOverlayFile(p); err != nil {
				return nil, err
			}
		}
		return reg, nil
	}

	list := &cobra.Command{Use: "list", Short: "List known game codes"}
	list.RunE = func(cmd *cobra.Command, args []string) error {
		reg, err := newReg()
		if err != nil {
			return err
		}
		return printJSON(reg.Codes())
	}

	show := &cobra.Command{Use: "show", Short: "Show one game's roster policy"}
	var game string
	show.Flags().StringVar(&game, "game", "", "game code or alias")
	show.RunE = func(cmd *cobra.Command, args []string) error {
		reg, err := newReg()
		if err != nil {
			return err
		}
		p, err := reg.Resolve(game)
		if err != nil {
			return err
		}
		return printJSON(p)
	}

	cmd.AddCommand(list, show)
	return cmd
}

func auditCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "audit", Short: "Audit trail tools"}

	verify := &cobra.Command{Use: "verify", Short: "Verify the audit trail hash chain"}
	var file string
	verify.Flags().StringVar(&file, "file", "", "audit trail path (jsonl)")
	verify.RunE = func(cmd *cobra.Command, args []string) error {
		if file == "" {
			file = viper.GetString("audit.file")
		}
		if file == "" {
			return fmt.Errorf("--file required")
		}
		n, err := auditchain.Verify(file)
		if err != nil {
			return fmt.Errorf("chain broken after %d records: %w", n, err)
		}
		fmt.Printf("ok: %d records\n", n)
		return nil
	}

	cmd.AddCommand(verify)
	return cmd
}
