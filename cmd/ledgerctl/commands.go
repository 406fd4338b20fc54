package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	repo "farm-loan-ledger/internal/adapter/repository/mysql"
	"farm-loan-ledger/internal/config"
	"farm-loan-ledger/internal/domain/ledger"
	ledgeruc "farm-loan-ledger/internal/usecase/ledger"
)

// opener connects using the given .env file ("" for the environment only).
type opener func(envFile string) (*gorm.DB, *config.Config, error)

type session struct {
	svc   *ledgeruc.Service
	audit *ledgeruc.Audit
	close func()
}

func connect(open opener, envFile string) (*session, error) {
	db, cfg, err := open(envFile)
	if err != nil {
		return nil, err
	}
	reads := repo.NewGormUoW(db).Repos()
	batch := 0
	if cfg != nil {
		batch = cfg.LedgerVerifyBatch
	}
	return &session{
		svc:   ledgeruc.NewService(reads.Ledger, ledgeruc.WithBatchSize(batch)),
		audit: ledgeruc.NewAudit(reads, batch),
		close: func() {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		},
	}, nil
}

// errChainBroken maps to exit status 2 so scripts can tell it from connection failures.
var errChainBroken = errors.New("ledger chain is broken")

func exitCode(err error) int {
	if errors.Is(err, errChainBroken) {
		return 2
	}
	return 1
}

func newRootCmd(open opener) *cobra.Command {
	var envFile string
	root := &cobra.Command{
		Use:           "ledgerctl",
		Short:         "Operator tool for the disbursement ledger",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&envFile, "env", "", "path to a .env file")

	withSession := func(run func(ctx context.Context, s *session, cmd *cobra.Command) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, _ []string) error {
			s, err := connect(open, envFile)
			if err != nil {
				return err
			}
			defer s.close()
			return run(cmd.Context(), s, cmd)
		}
	}

	root.AddCommand(verifyCmd(withSession), exportCmd(withSession), tailCmd(withSession))
	return root
}

type runner func(run func(ctx context.Context, s *session, cmd *cobra.Command) error) func(*cobra.Command, []string) error

func verifyCmd(with runner) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Replay the hash chain from genesis",
		Args:  cobra.NoArgs,
		RunE: with(func(ctx context.Context, s *session, cmd *cobra.Command) error {
			report, err := s.svc.Verify(ctx)
			if err != nil && !errors.Is(err, ledger.ErrChainIntegrityViolation) {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				if err := json.NewEncoder(out).Encode(report); err != nil {
					return err
				}
			} else if report.Valid {
				fmt.Fprintf(out, "OK  %d entries, tip %s\n", report.Entries, report.TipHash)
			} else {
				fmt.Fprintf(out, "BROKEN  first invalid sequence %d (%d entries verified before it)\n",
					report.FirstInvalidSequence, report.Entries)
			}
			if !report.Valid {
				return errChainBroken
			}
			return nil
		}),
	}
	cmd.Flags().BoolVarP(&asJSON, "json", "j", false, "print the report as JSON")
	return cmd
}

func exportCmd(with runner) *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the audit CSV",
		Args:  cobra.NoArgs,
		RunE: with(func(ctx context.Context, s *session, cmd *cobra.Command) error {
			var w io.Writer = cmd.OutOrStdout()
			if path != "" && path != "-" {
				f, err := os.Create(path)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			return s.audit.ExportCSV(ctx, w)
		}),
	}
	cmd.Flags().StringVarP(&path, "out", "o", "-", "output file, - for stdout")
	return cmd
}

func tailCmd(with runner) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Show the newest ledger entries",
		Args:  cobra.NoArgs,
		RunE: with(func(ctx context.Context, s *session, cmd *cobra.Command) error {
			rows, err := s.audit.List(ctx, limit)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "SEQ\tREFERENCE\tLOAN\tAMOUNT\tTO\tTIMESTAMP\tHASH")
			for _, e := range rows {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
					e.Sequence, e.ReferenceID, e.LoanID, e.Amount, e.Destination,
					e.Timestamp.Format("2006-01-02T15:04:05.000000Z"), e.Hash[:12])
			}
			return tw.Flush()
		}),
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of entries")
	return cmd
}
