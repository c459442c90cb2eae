package policies

import (
	"fmt"
	"time"

	"github.com/crucial707/dtl-policy/cmd/cli/config"
	"github.com/crucial707/dtl-policy/cmd/cli/output"
	"github.com/crucial707/dtl-policy/internal/client"
	"github.com/crucial707/dtl-policy/internal/logging"
	"github.com/crucial707/dtl-policy/internal/models"
	"github.com/crucial707/dtl-policy/internal/policy"
	"github.com/spf13/cobra"
)

// now is replaced in tests.
var now = time.Now

// InitPolicy registers the policy command tree on the root command.
func InitPolicy(rootCmd *cobra.Command) {
	policyCmd := &cobra.Command{
		Use:   "policy",
		Short: "Manage lab policies",
	}

	autoShutdownCmd := &cobra.Command{
		Use:   "auto-shutdown",
		Short: "Manage the lab VM auto-shutdown schedule",
	}
	autoShutdownCmd.AddCommand(setCmd(), getCmd())

	policyCmd.AddCommand(autoShutdownCmd)
	rootCmd.AddCommand(policyCmd)
}

type labFlags struct {
	group string
	lab   string
	json  bool
}

func (f *labFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.group, "resource-group", "g", "", "resource group of the lab (defaults to the profile)")
	cmd.Flags().StringVarP(&f.lab, "lab", "l", "", "lab name (defaults to the profile)")
	cmd.Flags().BoolVarP(&f.json, "json", "j", false, "print the policy as JSON")
}

// key resolves the policy key, falling back to the profile for group and lab.
func (f *labFlags) key(settings config.Settings) (policy.Key, error) {
	group, lab := f.group, f.lab
	if group == "" {
		group = settings.Profile.ResourceGroup
	}
	if lab == "" {
		lab = settings.Profile.Lab
	}
	if group == "" {
		return policy.Key{}, fmt.Errorf("resource group is required (--resource-group or profile resource_group)")
	}
	if lab == "" {
		return policy.Key{}, fmt.Errorf("lab is required (--lab or profile lab)")
	}
	return policy.Key{ResourceGroup: group, LabName: lab, PolicyName: models.PolicyLabVmsShutdown}, nil
}

func newClient(settings config.Settings) (*client.Client, error) {
	if settings.Token == "" {
		return nil, fmt.Errorf("not logged in: run 'dtl login' first")
	}
	return client.New(settings.APIURL, client.WithToken(settings.Token)), nil
}

func render(cmd *cobra.Command, p *models.SchedulePolicy, asJSON bool) error {
	view := policy.ToView(p, now())
	if asJSON {
		return output.JSON(cmd.OutOrStdout(), view)
	}
	output.RenderTable(cmd.OutOrStdout(), []string{"Field", "Value"}, view.Rows())
	return nil
}

func setCmd() *cobra.Command {
	var (
		flags   labFlags
		timeStr string
		enable  bool
		disable bool
	)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Create or update the auto-shutdown policy of a lab",
		Long: `Set the daily shutdown time and/or status of a lab's auto-shutdown policy.
The policy is created when it does not exist and --time is given.`,
		Example: `  dtl policy auto-shutdown set -g rg1 -l lab1 --time 18:30
  dtl policy auto-shutdown set -g rg1 -l lab1 --disable`,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := config.FromCommand(cmd)
			if err != nil {
				return err
			}
			key, err := flags.key(settings)
			if err != nil {
				return err
			}

			status, err := policy.StatusChangeFromFlags(enable, disable)
			if err != nil {
				return err
			}
			opts := policy.Options{Status: status}
			if timeStr != "" {
				t, err := policy.ParseTimeOfDay(timeStr)
				if err != nil {
					return err
				}
				opts.Time = &t
			}

			c, err := newClient(settings)
			if err != nil {
				return err
			}

			level := "warn"
			if settings.Verbose {
				level = "debug"
			}
			logger := logging.New(cmd.ErrOrStderr(), "text", level)

			out, err := policy.NewReconciler(c, logger).Reconcile(cmd.Context(), key, opts)
			if err != nil {
				if models.IsNotFound(err) && opts.Time == nil {
					cmd.PrintErrln("Hint: the lab has no auto-shutdown policy yet; pass --time to create it.")
				}
				return err
			}
			return render(cmd, out, flags.json)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&timeStr, "time", "", "daily shutdown time, e.g. 18:30, 1830 or 6:30PM")
	cmd.Flags().BoolVar(&enable, "enable", false, "enable the policy")
	cmd.Flags().BoolVar(&disable, "disable", false, "disable the policy")
	cmd.MarkFlagsMutuallyExclusive("enable", "disable")

	return cmd
}

func getCmd() *cobra.Command {
	var flags labFlags

	cmd := &cobra.Command{
		Use:   "get",
		Short: "Show the auto-shutdown policy of a lab",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := config.FromCommand(cmd)
			if err != nil {
				return err
			}
			key, err := flags.key(settings)
			if err != nil {
				return err
			}
			c, err := newClient(settings)
			if err != nil {
				return err
			}

			p, err := c.GetResource(cmd.Context(), key)
			if err != nil {
				return err
			}
			return render(cmd, p, flags.json)
		},
	}

	flags.register(cmd)
	return cmd
}
