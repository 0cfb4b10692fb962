package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/instaintelli/cli/pkg/formatter"
	"github.com/instaintelli/cli/pkg/output"
	"github.com/instaintelli/cli/pkg/prompter"
	"github.com/instaintelli/cli/pkg/service"
)

const securityRoute = "/settings/security"

var mfaQRPath string

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage account settings",
}

var mfaCmd = &cobra.Command{
	Use:   "mfa",
	Short: "Two-factor authentication",
}

var mfaSetupCmd = &cobra.Command{
	Use:         "setup",
	Short:       "Enroll an authenticator app",
	Long:        "Start two-factor enrollment. Scan the QR code (or enter the secret) in your authenticator app, then confirm with a code.",
	Annotations: routed(securityRoute),
	RunE: func(cmd *cobra.Command, args []string) error {
		mfaSvc := service.NewMFAService(deps)
		enr, err := mfaSvc.Setup(cmd.Context(), mfaQRPath)
		if err != nil {
			return err
		}

		if enr.QRPath != "" {
			output.PrintInfo("QR code written to %s", enr.QRPath)
		}
		fmt.Fprintf(output.Stdout, "Secret: %s\n", enr.Secret)
		if enr.OTPAuthURL != "" {
			formatter.Faint.Fprintln(output.Stdout, enr.OTPAuthURL)
		}
		printRecoveryCodes(enr.RecoveryCodes)

		code, err := prompter.PromptCode("Code from your authenticator app: ")
		if err != nil {
			return err
		}
		if err := mfaSvc.Enable(cmd.Context(), code); err != nil {
			return err
		}
		output.PrintSuccess("Two-factor authentication enabled")
		return nil
	},
}

var mfaDisableCmd = &cobra.Command{
	Use:         "disable",
	Short:       "Turn off two-factor authentication",
	Annotations: routed(securityRoute),
	RunE: func(cmd *cobra.Command, args []string) error {
		code, err := prompter.PromptCode("Authentication code (or recovery code): ")
		if err != nil {
			return err
		}
		if err := service.NewMFAService(deps).Disable(cmd.Context(), code); err != nil {
			return err
		}
		output.PrintSuccess("Two-factor authentication disabled")
		return nil
	},
}

var mfaStatusCmd = &cobra.Command{
	Use:         "status",
	Short:       "Show two-factor status",
	Annotations: routed(securityRoute),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := service.NewMFAService(deps).Status(cmd.Context())
		if err != nil {
			return err
		}
		return output.PrintRecord("Two-factor authentication", map[string]interface{}{
			"enabled":        st.MFAEnabled,
			"recovery codes": st.HasRecoveryCodes,
		})
	},
}

var mfaRecoveryCodesCmd = &cobra.Command{
	Use:         "recovery-codes",
	Short:       "Generate new recovery codes",
	Long:        "Replace all recovery codes. Old codes stop working immediately.",
	Annotations: routed(securityRoute),
	RunE: func(cmd *cobra.Command, args []string) error {
		code, err := prompter.PromptCode("Code from your authenticator app: ")
		if err != nil {
			return err
		}
		codes, err := service.NewMFAService(deps).RegenerateRecoveryCodes(cmd.Context(), code)
		if err != nil {
			return err
		}
		printRecoveryCodes(codes)
		return nil
	},
}

func printRecoveryCodes(codes []string) {
	if len(codes) == 0 {
		return
	}
	formatter.Warning.Fprintln(output.Stdout, "Recovery codes (each works once, store them somewhere safe):")
	for _, c := range codes {
		fmt.Fprintf(output.Stdout, "  %s\n", c)
	}
}

func init() {
	settingsCmd.AddCommand(mfaCmd)

	mfaCmd.AddCommand(mfaSetupCmd)
	mfaCmd.AddCommand(mfaDisableCmd)
	mfaCmd.AddCommand(mfaStatusCmd)
	mfaCmd.AddCommand(mfaRecoveryCodesCmd)

	mfaSetupCmd.Flags().StringVar(&mfaQRPath, "qr", "instaintelli-mfa.png", "Where to write the QR code image (empty to skip)")
}
