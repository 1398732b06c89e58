package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jaspindersingh83/s30mocks-backend/internal/app"
	"github.com/jaspindersingh83/s30mocks-backend/internal/apperr"
	"github.com/jaspindersingh83/s30mocks-backend/internal/model"
	"github.com/jaspindersingh83/s30mocks-backend/internal/service"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// slotFile is the YAML layout accepted by `slots import`
type slotFile struct {
	Interviewer string `yaml:"interviewer"`
	Slots       []struct {
		Start time.Time `yaml:"start"`
		End   time.Time `yaml:"end"`
		Type  string    `yaml:"type"`
	} `yaml:"slots"`
}

func parseSlotFile(r io.Reader) (*slotFile, error) {
	var f slotFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode slot file: %w", err)
	}
	if f.Interviewer == "" {
		return nil, fmt.Errorf("slot file: interviewer is required")
	}
	if len(f.Slots) == 0 {
		return nil, fmt.Errorf("slot file: no slots listed")
	}
	return &f, nil
}

func (f *slotFile) inputs() []service.SlotInput {
	inputs := make([]service.SlotInput, 0, len(f.Slots))
	for _, s := range f.Slots {
		inputs = append(inputs, service.SlotInput{
			Start: s.Start,
			End:   s.End,
			Type:  model.InterviewType(s.Type),
		})
	}
	return inputs
}

func slotsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "slots",
		Short: "Manage interviewer availability",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "import <file.yaml>",
		Short: "Create slots in bulk from a YAML file",
		Long: `Create slots in bulk. Each slot is validated on its own; failures are
reported and do not stop the import. A missing end defaults to the
fixed length of the interview type.

  interviewer: priya@s30mocks.com
  slots:
    - start: 2026-03-11T10:00:00+05:30
      type: DSA
    - start: 2026-03-11T15:00:00+05:30
      end: 2026-03-11T15:50:00+05:30
      type: SystemDesign`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer file.Close()

			sf, err := parseSlotFile(file)
			if err != nil {
				return err
			}

			a, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer shutdown(a)

			return importSlots(cmd.Context(), cmd, a, sf)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Print free upcoming slots",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer shutdown(a)

			slots, err := a.Slots.ListAvailable(cmd.Context(), model.SlotFilter{})
			if err != nil {
				return err
			}
			for _, s := range slots {
				fmt.Fprintf(cmd.OutOrStdout(), "#%d\t%s\t%s\tinterviewer %d\n",
					s.ID, s.InterviewType, s.StartTime.Format(time.RFC3339), s.InterviewerID)
			}
			return nil
		},
	})

	return cmd
}

func importSlots(ctx context.Context, cmd *cobra.Command, a *app.App, sf *slotFile) error {
	actor, err := actorFromFlags(cmd, a)
	if err != nil {
		return err
	}

	interviewer, err := a.Users.ActorByEmail(ctx, sf.Interviewer)
	if err != nil {
		return err
	}

	failed := 0
	for _, res := range a.Slots.ImportSlots(ctx, actor, interviewer.UserID, sf.inputs()) {
		if res.Err != nil {
			failed++
			fmt.Fprintf(cmd.ErrOrStderr(), "skip %s %s: %s\n",
				res.Input.Type, res.Input.Start.Format(time.RFC3339), apperr.UserMessage(res.Err))
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created slot #%d %s %s\n",
			res.Slot.ID, res.Slot.InterviewType, res.Slot.StartTime.Format(time.RFC3339))
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d slots were not created", failed, len(sf.Slots))
	}
	return nil
}

// actorFromFlags resolves --as, defaulting to the single configured admin
func actorFromFlags(cmd *cobra.Command, a *app.App) (model.Actor, error) {
	email, _ := cmd.Flags().GetString("as")
	if email == "" && len(a.Config.AdminEmails) == 1 {
		email = a.Config.AdminEmails[0]
	}
	if email == "" {
		return model.Actor{}, fmt.Errorf("--as is required")
	}
	return a.Users.ActorByEmail(cmd.Context(), email)
}
