package cli

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"eventadmin/internal/client"
	"eventadmin/internal/dashboard"
	"eventadmin/internal/logging"
	"eventadmin/internal/pkg/notice"
)

const defaultAPIURL = "http://localhost:8080"

// env holds what every subcommand needs once flags are parsed.
type env struct {
	v   *viper.Viper
	log *logrus.Logger
	api *client.Client
}

// NewRootCmd builds the eventctl command tree. httpClient may be nil.
func NewRootCmd(httpClient *http.Client) *cobra.Command {
	e := &env{v: viper.New()}

	root := &cobra.Command{
		Use:   "eventctl",
		Short: "Manage events from the terminal",
		Long: `eventctl manages events through the eventadmin API. Create and edit
accept local banner and gallery images, uploaded with the submission.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			e.log = logging.NewWithOutput("development", e.v.GetString("log_level"), cmd.ErrOrStderr())
			e.api = client.New(e.v.GetString("api"), withTimeout(httpClient, e.v.GetDuration("timeout")))
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.String("api", defaultAPIURL, "base URL of the eventadmin API")
	flags.Duration("timeout", 60*time.Second, "request timeout")
	flags.String("log-level", "warn", "log level for diagnostics on stderr")

	e.v.SetEnvPrefix("EVENTADMIN")
	e.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	e.v.AutomaticEnv()
	_ = e.v.BindPFlag("api", flags.Lookup("api"))
	_ = e.v.BindEnv("api", "EVENTADMIN_API_URL")
	_ = e.v.BindPFlag("timeout", flags.Lookup("timeout"))
	_ = e.v.BindPFlag("log_level", flags.Lookup("log-level"))

	root.AddCommand(
		newListCmd(e),
		newShowCmd(e),
		newCreateCmd(e),
		newEditCmd(e),
		newPatchCmd(e),
		newDeleteCmd(e),
	)
	return root
}

// Execute runs eventctl against os.Args.
func Execute() {
	if err := NewRootCmd(nil).Execute(); err != nil {
		os.Exit(1)
	}
}

func withTimeout(c *http.Client, timeout time.Duration) *http.Client {
	if c == nil {
		return &http.Client{Timeout: timeout}
	}
	cp := *c
	if timeout > 0 {
		cp.Timeout = timeout
	}
	return &cp
}

func printNotices(w io.Writer, notices []notice.Notice) {
	for _, n := range notices {
		dashboard.RenderNotice(w, n)
	}
}

func writerNotifier(w io.Writer) dashboard.NotifyFunc {
	return func(n notice.Notice) { dashboard.RenderNotice(w, n) }
}

func exactID(cmd *cobra.Command, args []string) error {
	if len(args) != 1 || strings.TrimSpace(args[0]) == "" {
		return fmt.Errorf("%s needs exactly one event id", cmd.Name())
	}
	return nil
}
