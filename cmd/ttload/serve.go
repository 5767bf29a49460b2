package main

import (
	"github.com/spf13/cobra"
	"github.com/ukaji3/timetable-go/pkg/timetable/branch"
	"github.com/ukaji3/timetable-go/pkg/timetable/nlq"
	"github.com/ukaji3/timetable-go/pkg/timetable/server"
)

type serveOptions struct {
	addr     string
	manifest string
	rooms    string
}

func newServeCmd(a *app) *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve read-only lookups over the loaded stores",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runServe(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "Listen address (default from TIMETABLE_LISTEN)")
	cmd.Flags().StringVar(&opts.manifest, "branches", "", "Branch manifest (default from TIMETABLE_BRANCHES)")
	cmd.Flags().StringVar(&opts.rooms, "rooms", "", "Room manifest (default from TIMETABLE_ROOMS)")

	return cmd
}

func (a *app) runServe(cmd *cobra.Command, o serveOptions) error {
	branches, err := branch.LoadManifest(a.manifestPath(o.manifest))
	if err != nil {
		return err
	}

	roomsPath := o.rooms
	if roomsPath == "" {
		roomsPath = a.cfg.Paths.Rooms
	}
	var rooms branch.Rooms
	if roomsPath != "" {
		if rooms, err = branch.LoadRooms(roomsPath); err != nil {
			return err
		}
	}

	var tr nlq.Translator
	if a.cfg.NLQ.Enabled() {
		if tr, err = a.translator(); err != nil {
			return err
		}
	} else {
		a.log.Info("question translation disabled (NLQ_API_KEY not set)")
	}

	addr := o.addr
	if addr == "" {
		addr = a.cfg.Server.Listen
	}

	srv := server.New(server.Config{
		Branches:   branches,
		Rooms:      rooms,
		Store:      a.cfg.StoreOptions(),
		Translator: tr,
		Logger:     a.log,
	})
	return srv.ListenAndServe(cmd.Context(), addr)
}
