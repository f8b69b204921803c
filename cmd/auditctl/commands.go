// MagenSec Audit Analytics - Audit Event Pipeline for the Security Dashboard
// Copyright 2026 MagenSec
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/MagenSec/audit-analytics

package main

import (
	"github.com/spf13/cobra"

	"github.com/MagenSec/audit-analytics/internal/aggregate"
	"github.com/MagenSec/audit-analytics/internal/api"
	"github.com/MagenSec/audit-analytics/internal/classify"
	"github.com/MagenSec/audit-analytics/internal/filter"
	"github.com/MagenSec/audit-analytics/internal/models"
	"github.com/MagenSec/audit-analytics/internal/sessions"
	"github.com/MagenSec/audit-analytics/internal/validation"
)

// filterFlags mirrors the dashboard filter bar.
type filterFlags struct {
	eventType string
	search    string
	dateFrom  string
	dateTo    string
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.eventType, "type", "", "Type key filter (\"Type\" or \"Type:Sub\")")
	cmd.Flags().StringVar(&f.search, "search", "", "Case-insensitive substring search")
	cmd.Flags().StringVar(&f.dateFrom, "from", "", "Inclusive lower bound (YYYY-MM-DD or RFC3339)")
	cmd.Flags().StringVar(&f.dateTo, "to", "", "Inclusive upper bound, end of day (YYYY-MM-DD or RFC3339)")
}

func (f *filterFlags) query(o *options) validation.EventsQuery {
	return validation.EventsQuery{
		OrgQuery: o.orgQuery(),
		Type:     f.eventType,
		Search:   f.search,
		DateFrom: f.dateFrom,
		DateTo:   f.dateTo,
	}
}

func (f *filterFlags) filters() models.Filters {
	return models.Filters{
		EventType: f.eventType,
		Search:    f.search,
		DateFrom:  f.dateFrom,
		DateTo:    f.dateTo,
	}
}

func newEventsCmd(o *options) *cobra.Command {
	var f filterFlags
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Print classified events after filtering",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validate(f.query(o)); err != nil {
				return err
			}
			res, err := o.load(cmd.Context())
			if err != nil {
				return err
			}

			filters := f.filters()
			matched := filter.Apply(res.Batch.Events, filters, o.loc)
			return o.print(api.EventsResponse{
				OrgID:     o.orgID,
				RangeDays: o.days,
				Total:     len(res.Batch.Events),
				Count:     len(matched),
				Filters:   filters,
				Events:    classify.ClassifyAll(matched),
				UxSummary: res.Batch.UxSummary,
			})
		},
	}
	f.register(cmd)
	return cmd
}

func newTypesCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "Print the event type filter options",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validate(o.orgQuery()); err != nil {
				return err
			}
			res, err := o.load(cmd.Context())
			if err != nil {
				return err
			}

			types := filter.TypeOptions(res.Batch.Events)
			if types == nil {
				types = []models.TypeOption{}
			}
			return o.print(api.TypesResponse{
				OrgID:     o.orgID,
				RangeDays: o.days,
				Total:     len(res.Batch.Events),
				Types:     types,
			})
		},
	}
}

func newSessionsCmd(o *options) *cobra.Command {
	var f filterFlags
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Print per-actor activity sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validate(f.query(o)); err != nil {
				return err
			}
			res, err := o.load(cmd.Context())
			if err != nil {
				return err
			}

			grouped := sessions.ComputeUserSessions(filter.Apply(res.Batch.Events, f.filters(), o.loc))
			summary := sessions.Summarize(grouped)
			if summary == nil {
				summary = []models.ActorSummary{}
			}
			return o.print(api.SessionsResponse{
				OrgID:      o.orgID,
				RangeDays:  o.days,
				GapMinutes: sessions.SessionGap.Minutes(),
				Sessions:   grouped,
				Summary:    summary,
			})
		},
	}
	f.register(cmd)
	return cmd
}

func newSeriesCmd(o *options) *cobra.Command {
	var (
		f        filterFlags
		detailed bool
	)
	cmd := &cobra.Command{
		Use:       "series {daily|timeline|lifecycle|logins}",
		Short:     "Print a chart series for one view",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{aggregate.ViewDaily, aggregate.ViewTimeline, aggregate.ViewLifecycle, aggregate.ViewLogins},
		RunE: func(cmd *cobra.Command, args []string) error {
			q := validation.SeriesQuery{EventsQuery: f.query(o), View: args[0], Detailed: detailed}
			if err := validate(q); err != nil {
				return err
			}
			res, err := o.load(cmd.Context())
			if err != nil {
				return err
			}

			matched := filter.Apply(res.Batch.Events, f.filters(), o.loc)
			result := aggregate.BuildView(matched, aggregate.ViewRequest{
				View:      q.View,
				RangeDays: o.days,
				Now:       o.now(),
				Detailed:  detailed,
			}, o.loc)
			return o.print(api.NewSeriesResponse(o.orgID, o.days, q.View, result))
		},
	}
	f.register(cmd)
	cmd.Flags().BoolVar(&detailed, "detailed", false, "Split lifecycle categories by subtype")
	return cmd
}
