package main

import (
	"context"
	"time"

	"livebait-directory/database"
	"livebait-directory/importer"
	"livebait-directory/regions"
	"livebait-directory/utils"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type importOptions struct {
	file      string
	delimiter string
	notify    bool
}

func newImportCmd(a *app) *cobra.Command {
	var opts importOptions

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Load bait shop records from a delimited file or workbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.file == "" {
				opts.file = a.cfg.InputPath
			}
			if opts.delimiter == "" {
				opts.delimiter = a.cfg.Delimiter
			}
			return a.runImport(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.file, "file", "", "Input file (.csv, .tsv, .txt or .xlsx; default IMPORT_FILE)")
	cmd.Flags().StringVar(&opts.delimiter, "delimiter", "", "Field delimiter for text inputs (default IMPORT_DELIMITER)")
	cmd.Flags().BoolVar(&opts.notify, "notify", false, "Email the summary to IMPORT_NOTIFY_EMAIL")
	return cmd
}

// runImport reads the whole input before touching the database, so a
// missing file fails with exitInput and no rows processed.
func (a *app) runImport(ctx context.Context, opts importOptions) error {
	if len(opts.delimiter) != 1 {
		return withCode(exitConfig, errors.Errorf("delimiter must be a single character, got %q", opts.delimiter))
	}

	rows, err := importer.LoadFile(opts.file, opts.delimiter)
	if errors.Is(err, importer.ErrInputMissing) {
		a.log.WithField("file", opts.file).Error("Input file not found")
		return withCode(exitInput, err)
	}
	if err != nil {
		return withCode(exitInput, err)
	}
	a.log.WithFields(logrus.Fields{"file": opts.file, "rows": len(rows)}).Info("Input loaded")

	db, err := a.connect(false)
	if err != nil {
		return err
	}
	defer closeDB(db, a.log)

	started := time.Now()
	im := importer.New(database.NewGormStore(db), regions.Default(), importer.DefaultOptions(), a.log)
	res := im.RunBatch(ctx, rows)

	if opts.notify {
		a.notifyImport(opts.file, res, time.Since(started))
	}
	return nil
}

// notifyImport mails a batch summary. Failures are logged only.
func (a *app) notifyImport(source string, res importer.Result, took time.Duration) {
	if a.cfg.ImportNotifyEmail == "" || !a.cfg.SMTP.Enabled() {
		a.log.Debug("Import notification skipped, SMTP or recipient not configured")
		return
	}

	smtpCfg := utils.EmailConfig{
		Host:     a.cfg.SMTP.Host,
		Port:     a.cfg.SMTP.Port,
		Username: a.cfg.SMTP.Username,
		Password: a.cfg.SMTP.Password,
		From:     a.cfg.SMTP.From,
	}
	summary := utils.ImportSummary{
		Source:   source,
		Imported: res.Imported,
		Skipped:  res.Skipped,
		Cities:   res.Cities,
		Duration: took,
	}
	if err := utils.SendImportSummary(smtpCfg, a.cfg.ImportNotifyEmail, summary); err != nil {
		a.log.WithError(err).Warn("Failed to send import notification")
		return
	}
	a.log.WithField("to", a.cfg.ImportNotifyEmail).Info("Import notification sent")
}
