package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"text/tabwriter"
	"time"

	governanceengine "condogov/contexts/assembly-governance/governance-engine"
	postgresadapter "condogov/contexts/assembly-governance/governance-engine/adapters/postgres"
	"condogov/contexts/assembly-governance/governance-engine/application/queries"
	"condogov/contexts/assembly-governance/governance-engine/domain/entities"
	"condogov/contexts/assembly-governance/governance-engine/domain/lifecycle"
	"condogov/contexts/assembly-governance/governance-engine/domain/proxylimit"
	"condogov/contexts/assembly-governance/governance-engine/domain/quorum"
	"condogov/contexts/assembly-governance/governance-engine/domain/tally"
	"condogov/internal/platform/config"
	"condogov/internal/platform/db"
	"condogov/internal/platform/logging"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

const commandTimeout = 30 * time.Second

func rootCmd() *cobra.Command {
	var logLevel string

	cmd := &cobra.Command{
		Use:   "assemblyctl",
		Short: "Condominium assembly governance operator tool",
		Long: `assemblyctl computes proxy caps, quorum and approval outcomes offline,
and maintains the site registry and meetings in the configured database.

Database commands read POSTGRES_DSN from the environment.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		capsCmd(),
		quorumCmd(),
		approveCmd(),
		migrateCmd(&logLevel),
		registerSiteCmd(&logLevel),
		registerUnitCmd(&logLevel),
		gatesCmd(&logLevel),
		minutesCmd(&logLevel),
	)
	return cmd
}

func capsCmd() *cobra.Command {
	var (
		units     int
		landShare string
	)
	cmd := &cobra.Command{
		Use:   "caps",
		Short: "Print the proxy caps for a site population",
		RunE: func(cmd *cobra.Command, _ []string) error {
			total, err := parseDecimal("land-share", landShare)
			if err != nil {
				return err
			}
			caps, err := queries.MeetingQueries{}.ProxyCaps(units, total)
			if err != nil {
				return fmt.Errorf("compute caps: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "units: %d, land share: %s\n", caps.TotalUnitCount, caps.TotalLandShare.StringFixed(2))
			fmt.Fprintf(out, "max proxies per receiver: %d\n", caps.MaxCount)
			fmt.Fprintf(out, "max land share per receiver: %s\n", caps.MaxLandShare.StringFixed(2))
			return nil
		},
	}
	cmd.Flags().IntVar(&units, "units", 0, "Active unit count of the site")
	cmd.Flags().StringVar(&landShare, "land-share", "0", "Total land share of the site")
	_ = cmd.MarkFlagRequired("units")
	_ = cmd.MarkFlagRequired("land-share")
	return cmd
}

func quorumCmd() *cobra.Command {
	var (
		totalUnits        int
		attendedUnits     int
		totalLandShare    string
		attendedLandShare string
	)
	cmd := &cobra.Command{
		Use:   "quorum",
		Short: "Evaluate the dual-majority quorum rule",
		RunE: func(cmd *cobra.Command, _ []string) error {
			total, err := parseDecimal("total-land-share", totalLandShare)
			if err != nil {
				return err
			}
			attended, err := parseDecimal("attended-land-share", attendedLandShare)
			if err != nil {
				return err
			}
			result := quorum.Evaluate(quorum.Input{
				TotalUnits:        totalUnits,
				AttendedUnits:     attendedUnits,
				TotalLandShare:    total,
				AttendedLandShare: attended,
			})
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "achieved: %t\n", result.Achieved)
			fmt.Fprintf(out, "units: %s%% (majority %t)\n", result.UnitPercent.StringFixed(1), result.UnitsAchieved)
			fmt.Fprintf(out, "land share: %s%% (majority %t)\n", result.LandSharePercent.StringFixed(1), result.LandShareAchieved)
			fmt.Fprintln(out, result.Message)
			return nil
		},
	}
	cmd.Flags().IntVar(&totalUnits, "total-units", 0, "Active unit count of the site")
	cmd.Flags().IntVar(&attendedUnits, "attended-units", 0, "Attending unit count")
	cmd.Flags().StringVar(&totalLandShare, "total-land-share", "0", "Total land share of the site")
	cmd.Flags().StringVar(&attendedLandShare, "attended-land-share", "0", "Attending land share")
	return cmd
}

func approveCmd() *cobra.Command {
	var (
		yes               int
		no                int
		yesLandShare      string
		noLandShare       string
		attendedUnits     int
		attendedLandShare string
	)
	cmd := &cobra.Command{
		Use:   "approve",
		Short: "Decide whether a tally approves a decision",
		RunE: func(cmd *cobra.Command, _ []string) error {
			yesShare, err := parseDecimal("yes-land-share", yesLandShare)
			if err != nil {
				return err
			}
			noShare, err := parseDecimal("no-land-share", noLandShare)
			if err != nil {
				return err
			}
			attended, err := parseDecimal("attended-land-share", attendedLandShare)
			if err != nil {
				return err
			}
			approved := tally.IsApproved(tally.ApprovalInput{
				YesCount:               yes,
				NoCount:                no,
				YesLandShare:           yesShare,
				NoLandShare:            noShare,
				TotalAttendedUnits:     attendedUnits,
				TotalAttendedLandShare: attended,
			})
			if approved {
				fmt.Fprintln(cmd.OutOrStdout(), "approved")
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "rejected")
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&yes, "yes", 0, "Yes vote count")
	cmd.Flags().IntVar(&no, "no", 0, "No vote count")
	cmd.Flags().StringVar(&yesLandShare, "yes-land-share", "0", "Land share voting yes")
	cmd.Flags().StringVar(&noLandShare, "no-land-share", "0", "Land share voting no")
	cmd.Flags().IntVar(&attendedUnits, "attended-units", 0, "Attending unit count")
	cmd.Flags().StringVar(&attendedLandShare, "attended-land-share", "0", "Attending land share")
	return cmd
}

func migrateCmd(logLevel *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the governance tables",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRepository(cmd.Context(), *logLevel, func(ctx context.Context, repo *postgresadapter.Repository, _ *slog.Logger) error {
				if err := repo.Migrate(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "governance schema is up to date")
				return nil
			})
		},
	}
}

func registerSiteCmd(logLevel *string) *cobra.Command {
	var site entities.Site
	var (
		totalLandShare string
		inactive       bool
	)
	cmd := &cobra.Command{
		Use:   "register-site",
		Short: "Create or update a site",
		RunE: func(cmd *cobra.Command, _ []string) error {
			total, err := parseDecimal("total-land-share", totalLandShare)
			if err != nil {
				return err
			}
			if strings.TrimSpace(site.SiteID) == "" || strings.TrimSpace(site.Name) == "" {
				return errors.New("--id and --name are required")
			}
			site.TotalLandShare = total
			site.IsActive = !inactive
			site.CreatedAt = time.Now().UTC()
			return withRepository(cmd.Context(), *logLevel, func(ctx context.Context, repo *postgresadapter.Repository, _ *slog.Logger) error {
				if err := repo.SaveSite(ctx, site); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "site %s saved\n", strings.TrimSpace(site.SiteID))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&site.SiteID, "id", "", "Site id")
	cmd.Flags().StringVar(&site.Name, "name", "", "Site name")
	cmd.Flags().StringVar(&site.Address, "address", "", "Site address")
	cmd.Flags().StringVar(&totalLandShare, "total-land-share", "0", "Total land share of the site")
	cmd.Flags().BoolVar(&inactive, "inactive", false, "Register the site as inactive")
	return cmd
}

func registerUnitCmd(logLevel *string) *cobra.Command {
	var unit entities.Unit
	var (
		landShare string
		inactive  bool
	)
	cmd := &cobra.Command{
		Use:   "register-unit",
		Short: "Create or update a unit of a registered site",
		RunE: func(cmd *cobra.Command, _ []string) error {
			share, err := parseDecimal("land-share", landShare)
			if err != nil {
				return err
			}
			if share.IsNegative() {
				return errors.New("--land-share must not be negative")
			}
			if strings.TrimSpace(unit.UnitID) == "" || strings.TrimSpace(unit.SiteID) == "" {
				return errors.New("--id and --site are required")
			}
			if strings.TrimSpace(unit.Phone) != "" {
				phone, ok := proxylimit.NormalizeMobile(unit.Phone)
				if !ok {
					return fmt.Errorf("--phone %q is not a mobile number", unit.Phone)
				}
				unit.Phone = phone
			}
			unit.LandShare = share
			unit.IsActive = !inactive
			unit.CreatedAt = time.Now().UTC()
			return withRepository(cmd.Context(), *logLevel, func(ctx context.Context, repo *postgresadapter.Repository, _ *slog.Logger) error {
				if err := repo.SaveUnit(ctx, unit); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "unit %s saved\n", strings.TrimSpace(unit.UnitID))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&unit.UnitID, "id", "", "Unit id")
	cmd.Flags().StringVar(&unit.SiteID, "site", "", "Owning site id")
	cmd.Flags().StringVar(&unit.Number, "number", "", "Unit number")
	cmd.Flags().StringVar(&unit.Block, "block", "", "Block")
	cmd.Flags().StringVar(&unit.OwnerName, "owner", "", "Owner name")
	cmd.Flags().StringVar(&unit.Phone, "phone", "", "Owner phone")
	cmd.Flags().StringVar(&unit.Email, "email", "", "Owner email")
	cmd.Flags().StringVar(&landShare, "land-share", "0", "Land share of the unit")
	cmd.Flags().BoolVar(&inactive, "inactive", false, "Register the unit as inactive")
	return cmd
}

func gatesCmd(logLevel *string) *cobra.Command {
	var operation string
	cmd := &cobra.Command{
		Use:   "gates <meeting-id>",
		Short: "List which operations a meeting currently permits",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			only := lifecycle.Operation(strings.TrimSpace(operation))
			if only != "" && !only.Known() {
				return fmt.Errorf("unknown operation %q", operation)
			}
			return withRepository(cmd.Context(), *logLevel, func(ctx context.Context, repo *postgresadapter.Repository, _ *slog.Logger) error {
				q := queries.MeetingQueries{Sites: repo, Meetings: repo}
				gates, err := q.Gates(ctx, args[0])
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "OPERATION\tPERMITTED\tREASON")
				for _, gate := range gates {
					if only != "" && gate.Operation != only {
						continue
					}
					fmt.Fprintf(w, "%s\t%t\t%s\n", gate.Operation, gate.Permitted, gate.Reason)
				}
				return w.Flush()
			})
		},
	}
	cmd.Flags().StringVar(&operation, "operation", "", "Show only this operation (e.g. cast_vote)")
	return cmd
}

func minutesCmd(logLevel *string) *cobra.Command {
	var compile bool
	cmd := &cobra.Command{
		Use:   "minutes <meeting-id>",
		Short: "Print the minutes of a meeting",
		Long: `Print the stored minutes of a meeting. With --compile the minutes are
compiled first when the meeting is completed and has none yet.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepository(cmd.Context(), *logLevel, func(ctx context.Context, repo *postgresadapter.Repository, logger *slog.Logger) error {
				if compile {
					cfg, err := config.Load()
					if err != nil {
						return err
					}
					module := governanceengine.NewModule(governanceengine.Dependencies{
						Sites:           repo,
						Meetings:        repo,
						Idempotency:     repo,
						Outbox:          repo,
						Clock:           postgresadapter.SystemClock{},
						IDGen:           postgresadapter.UUIDGenerator{},
						MinutesLocation: cfg.MinutesLocation(),
						Logger:          logger,
					})
					result, err := module.Handler.Meetings.CompileMinutes(ctx, args[0])
					if err != nil {
						return err
					}
					return printMinutes(cmd.OutOrStdout(), result.Meeting)
				}
				meeting, err := repo.GetMeeting(ctx, args[0])
				if err != nil {
					return err
				}
				return printMinutes(cmd.OutOrStdout(), meeting)
			})
		},
	}
	cmd.Flags().BoolVar(&compile, "compile", false, "Compile the minutes when missing")
	return cmd
}

func printMinutes(out io.Writer, meeting entities.Meeting) error {
	if !meeting.HasMinutes() {
		return fmt.Errorf("meeting %s has no compiled minutes", meeting.MeetingID)
	}
	_, err := fmt.Fprintln(out, meeting.Minutes)
	return err
}

func withRepository(
	parent context.Context,
	logLevel string,
	fn func(ctx context.Context, repo *postgresadapter.Repository, logger *slog.Logger) error,
) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := logging.New(logging.Options{
		Service: cfg.ServiceName,
		Process: "assemblyctl",
		Level:   logLevel,
		Format:  "text",
	})
	pg, err := db.Connect(cfg.PostgresDSN, logger)
	if err != nil {
		return err
	}
	defer func() { _ = pg.Close() }()

	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithTimeout(parent, commandTimeout)
	defer cancel()
	return fn(ctx, postgresadapter.NewRepository(pg.DB, logger), logger)
}

func parseDecimal(flag string, raw string) (decimal.Decimal, error) {
	value, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("--%s: %w", flag, err)
	}
	return value, nil
}
