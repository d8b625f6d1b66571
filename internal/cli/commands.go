package cli

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"eventadmin/internal/client"
	"eventadmin/internal/dashboard"
	"eventadmin/internal/domain/event"
	"eventadmin/internal/modules/events"
	"eventadmin/internal/pkg/notice"
)

func newListCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every event",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Listing never deletes.
			decline := dashboard.ConfirmFunc(func(string) bool { return false })
			view := dashboard.NewListView(e.api, decline, writerNotifier(cmd.ErrOrStderr()), e.log)
			if err := view.Load(cmd.Context()); err != nil {
				return err
			}
			return dashboard.RenderList(cmd.OutOrStdout(), view.Events())
		},
	}
}

func newShowCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one event",
		Args:  exactID,
		RunE: func(cmd *cobra.Command, args []string) error {
			ev, err := dashboard.NewDetailView(e.api).Show(cmd.Context(), args[0])
			if errors.Is(err, dashboard.ErrEventNotFound) {
				return fmt.Errorf("event %s not found", args[0])
			}
			if err != nil {
				return err
			}
			return dashboard.RenderDetail(cmd.OutOrStdout(), ev)
		},
	}
}

type submitFlags struct {
	file   string
	set    []string
	banner string
	images []string
}

func (f *submitFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.file, "file", "f", "", "JSON file with form values")
	cmd.Flags().StringArrayVar(&f.set, "set", nil, "field assignment key=value, repeatable")
	cmd.Flags().StringVar(&f.banner, "banner", "", "banner image to upload")
	cmd.Flags().StringArrayVar(&f.images, "image", nil, "gallery image to upload, repeatable; replaces image_urls")
}

func newCreateCmd(e *env) *cobra.Command {
	var f submitFlags
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an event from the default form",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			values, err := e.api.NewForm(ctx)
			if err != nil {
				return err
			}
			if values, err = mergeValues(values, f.file, f.set); err != nil {
				return err
			}
			media, err := readMedia(f.banner, f.images)
			if err != nil {
				return err
			}
			sub, err := e.api.CreateEvent(ctx, values, media)
			return finish(cmd, sub, err)
		},
	}
	f.register(cmd)
	return cmd
}

func newEditCmd(e *env) *cobra.Command {
	var f submitFlags
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit every field of an event, starting from its stored values",
		Args:  exactID,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			values, err := e.api.EditForm(ctx, args[0])
			if errors.Is(err, client.ErrNotFound) {
				return fmt.Errorf("event %s not found", args[0])
			}
			if err != nil {
				return err
			}
			if values, err = mergeValues(values, f.file, f.set); err != nil {
				return err
			}
			media, err := readMedia(f.banner, f.images)
			if err != nil {
				return err
			}
			sub, err := e.api.UpdateEvent(ctx, args[0], values, media)
			return finish(cmd, sub, err)
		},
	}
	f.register(cmd)
	return cmd
}

func newPatchCmd(e *env) *cobra.Command {
	var set []string
	cmd := &cobra.Command{
		Use:   "patch <id>",
		Short: "Change only the given fields of an event",
		Args:  exactID,
		RunE: func(cmd *cobra.Command, args []string) error {
			members, err := assignments(set)
			if err != nil {
				return err
			}
			raw, err := json.Marshal(members)
			if err != nil {
				return err
			}
			p, err := event.DecodePatchBytes(raw)
			if err != nil {
				return err
			}
			updated, err := e.api.PatchEvent(cmd.Context(), args[0], p)
			if errors.Is(err, client.ErrNotFound) {
				return fmt.Errorf("event %s not found", args[0])
			}
			if err != nil {
				reportAPIError(cmd.ErrOrStderr(), err)
				return err
			}
			return dashboard.RenderDetail(cmd.OutOrStdout(), updated)
		},
	}
	cmd.Flags().StringArrayVar(&set, "set", nil, "field assignment key=value, repeatable")
	return cmd
}

func newDeleteCmd(e *env) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an event after confirmation",
		Args:  exactID,
		RunE: func(cmd *cobra.Command, args []string) error {
			var confirm dashboard.Confirmer = promptConfirmer{in: bufio.NewReader(cmd.InOrStdin()), out: cmd.OutOrStdout()}
			if yes {
				confirm = dashboard.ConfirmFunc(func(string) bool { return true })
			}
			view := dashboard.NewListView(e.api, confirm, writerNotifier(cmd.OutOrStdout()), e.log)
			if err := view.Load(cmd.Context()); err != nil {
				return err
			}
			if view.Delete(cmd.Context(), args[0]) == dashboard.DeleteFailed {
				return errors.New("delete failed")
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func finish(cmd *cobra.Command, sub *events.Submission, err error) error {
	if err != nil {
		reportAPIError(cmd.ErrOrStderr(), err)
		return err
	}
	printNotices(cmd.OutOrStdout(), sub.Notices)
	return dashboard.RenderDetail(cmd.OutOrStdout(), sub.Event)
}

// reportAPIError prints notices carried in an error envelope's details.
func reportAPIError(w io.Writer, err error) {
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) || len(apiErr.Details) == 0 {
		return
	}
	var details struct {
		Notices []notice.Notice `json:"notices"`
	}
	if json.Unmarshal(apiErr.Details, &details) == nil {
		printNotices(w, details.Notices)
	}
}
