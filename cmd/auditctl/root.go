// MagenSec Audit Analytics - Audit Event Pipeline for the Security Dashboard
// Copyright 2026 MagenSec
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MagenSec/audit-analytics

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/MagenSec/audit-analytics/internal/cache"
	"github.com/MagenSec/audit-analytics/internal/config"
	"github.com/MagenSec/audit-analytics/internal/logging"
	"github.com/MagenSec/audit-analytics/internal/models"
	"github.com/MagenSec/audit-analytics/internal/pipeline"
	"github.com/MagenSec/audit-analytics/internal/validation"
)

// options holds the flags shared by every subcommand plus the state
// resolved before a subcommand runs.
type options struct {
	configPath string
	sourceURL  string
	cachePath  string
	orgID      string
	days       int
	cachedOnly bool
	logLevel   string
	pretty     bool

	out io.Writer
	cfg *config.Config
	loc *time.Location

	now         func() time.Time
	newPipeline func(*config.Config) (*pipeline.Pipeline, error)
}

func defaultOptions(out io.Writer) *options {
	return &options{
		out:         out,
		now:         time.Now,
		newPipeline: pipeline.New,
	}
}

func newRootCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auditctl",
		Short: "Query classified audit events, sessions and chart series",
		Long: `auditctl loads the audit events of one organization through the same
stale-while-revalidate cache the server uses and prints classified events,
actor sessions or chart series as JSON.`,
		SilenceUsage:      true,
		PersistentPreRunE: opts.setup,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "Config file path (env: CONFIG_PATH)")
	flags.StringVar(&opts.sourceURL, "source-url", "", "Audit source base URL (overrides SOURCE_BASE_URL)")
	flags.StringVar(&opts.cachePath, "cache-path", "", "Use a persistent badger cache at this directory")
	flags.StringVar(&opts.orgID, "org", "", "Organization ID (required)")
	flags.IntVar(&opts.days, "days", 0, "Day range (default: analytics.default_range_days)")
	flags.BoolVar(&opts.cachedOnly, "cached-only", false, "Only read the cache, never call the audit source")
	flags.StringVar(&opts.logLevel, "log-level", "warn", "Log level: debug, info, warn, error")
	flags.BoolVar(&opts.pretty, "pretty", false, "Indent JSON output")
	_ = cmd.MarkPersistentFlagRequired("org")

	cmd.AddCommand(
		newEventsCmd(opts),
		newTypesCmd(opts),
		newSessionsCmd(opts),
		newSeriesCmd(opts),
	)
	return cmd
}

// setup loads configuration, applies flag overrides and configures logging.
func (o *options) setup(cmd *cobra.Command, _ []string) error {
	logging.Init(logging.Config{Level: o.logLevel, Format: "console", Output: cmd.ErrOrStderr()})

	path := o.configPath
	if path == "" {
		path = os.Getenv(config.ConfigPathEnvVar)
	}
	cfg, err := config.LoadFile(path)
	if err != nil {
		return err
	}

	if o.sourceURL != "" {
		cfg.Source.BaseURL = o.sourceURL
	}
	if o.cachePath != "" {
		cfg.Cache.Backend = cache.BackendBadger
		cfg.Cache.Path = o.cachePath
	}
	if o.days == 0 {
		o.days = cfg.Analytics.DefaultRangeDays
	}
	if o.days > cfg.Analytics.MaxRangeDays {
		return fmt.Errorf("--days must be at most %d", cfg.Analytics.MaxRangeDays)
	}

	loc, err := cfg.Analytics.Location()
	if err != nil {
		return err
	}
	o.cfg = cfg
	o.loc = loc
	return nil
}

// orgQuery returns the validated org/day range of the invocation.
func (o *options) orgQuery() validation.OrgQuery {
	return validation.OrgQuery{OrgID: o.orgID, Days: o.days}
}

// validate runs the request validators the API uses.
func validate(q interface{}) error {
	if verr := validation.ValidateStruct(q); verr != nil {
		return verr
	}
	return nil
}

// load returns the batch for the org, either through the cache manager or,
// with --cached-only, straight from the cache.
func (o *options) load(ctx context.Context) (*cache.LoadResult, error) {
	if !o.cachedOnly && o.cfg.Source.BaseURL == "" {
		return nil, errors.New("no audit source configured: set SOURCE_BASE_URL or --source-url")
	}

	p, err := o.newPipeline(o.cfg)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := p.Close(); err != nil {
			logging.Warn().Err(err).Msg("closing audit pipeline")
		}
	}()

	if o.cachedOnly {
		entry, err := p.Manager.Peek(o.orgID, o.days)
		if errors.Is(err, cache.ErrNotFound) {
			return nil, fmt.Errorf("no cached events for org %q over %d days", o.orgID, o.days)
		}
		if err != nil {
			return nil, err
		}
		return &cache.LoadResult{
			Key:       cache.Key(o.orgID, o.days),
			OrgID:     o.orgID,
			RangeDays: o.days,
			Batch:     entry.Batch,
			FromCache: true,
			Stale:     entry.IsStale,
			FetchedAt: entry.Timestamp,
		}, nil
	}

	res, err := p.Manager.Load(ctx, o.orgID, o.days)
	if err != nil {
		return nil, err
	}
	if res.Batch == nil {
		res.Batch = &models.EventBatch{Events: []models.AuditEvent{}}
	}
	logging.Debug().
		Str("org_id", o.orgID).
		Int("events", len(res.Batch.Events)).
		Bool("from_cache", res.FromCache).
		Bool("stale", res.Stale).
		Msg("audit batch loaded")
	return res, nil
}

// print writes v as JSON followed by a newline.
func (o *options) print(v interface{}) error {
	var (
		data []byte
		err  error
	)
	if o.pretty {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	_, err = fmt.Fprintln(o.out, string(data))
	return err
}
