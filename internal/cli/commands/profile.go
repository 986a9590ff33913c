package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/foodctl/foodctl/internal/cli/client"
	"github.com/foodctl/foodctl/internal/validation"
)

// NewProfileCmd creates the profile command group. Without a subcommand it
// shows the profile.
func NewProfileCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or update your profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProfile(cmd.Context(), env)
		},
	}

	var opts registerOptions
	update := &cobra.Command{
		Use:   "update",
		Short: "Update your profile",
		Long: `Update your profile. Only the fields you pass are changed.

Examples:
  $ foodctl profile update --address "Lenina 1, apt. 5"
  $ foodctl profile update --phone "+7 (912) 345-67-89" --birth-date 1990-04-01`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			changed := profileChanges{
				name:      flags.Changed("name"),
				birthDate: flags.Changed("birth-date"),
				gender:    flags.Changed("gender"),
				address:   flags.Changed("address"),
				phone:     flags.Changed("phone"),
			}
			return runProfileUpdate(cmd.Context(), env, opts, changed)
		},
	}
	update.Flags().StringVar(&opts.FullName, "name", "", "Full name")
	update.Flags().StringVar(&opts.BirthDate, "birth-date", "", "Birth date (YYYY-MM-DD)")
	update.Flags().StringVar(&opts.Gender, "gender", "", "Gender (Male or Female)")
	update.Flags().StringVar(&opts.Address, "address", "", "Delivery address")
	update.Flags().StringVar(&opts.Phone, "phone", "", "Phone number")
	cmd.AddCommand(update)

	return cmd
}

type profileChanges struct {
	name, birthDate, gender, address, phone bool
}

func (c profileChanges) any() bool {
	return c.name || c.birthDate || c.gender || c.address || c.phone
}

func runProfile(ctx context.Context, env *Env) error {
	profile, err := env.client(pageProfile).Profile(ctx)
	if err != nil {
		return pageError(err, "failed to load profile data, please try again")
	}

	out := env.stdout()
	fmt.Fprintf(out, "%s\n", profile.FullName)
	fmt.Fprintf(out, "  Email:       %s\n", profile.Email)
	fmt.Fprintf(out, "  Gender:      %s\n", profile.Gender)
	if !profile.BirthDate.IsZero() {
		fmt.Fprintf(out, "  Birth date:  %s\n", profile.BirthDate.Format("2006-01-02"))
	}
	fmt.Fprintf(out, "  Phone:       %s\n", validation.FormatPhone(profile.PhoneNumber))
	fmt.Fprintf(out, "  Address:     %s\n", profile.Address)
	return nil
}

// profileUpdateFrom starts from the current profile and applies the changed
// fields
func profileUpdateFrom(profile *client.Profile, opts registerOptions, changed profileChanges) client.ProfileUpdate {
	update := client.ProfileUpdate{
		FullName:    profile.FullName,
		Gender:      profile.Gender,
		Address:     profile.Address,
		PhoneNumber: profile.PhoneNumber,
	}
	if !profile.BirthDate.IsZero() {
		update.BirthDate = profile.BirthDate.Format("2006-01-02")
	}

	if changed.name {
		update.FullName = opts.FullName
	}
	if changed.birthDate {
		update.BirthDate = opts.BirthDate
	}
	if changed.gender {
		update.Gender = opts.Gender
	}
	if changed.address {
		update.Address = opts.Address
	}
	if changed.phone {
		update.PhoneNumber = opts.Phone
	}
	return update
}

func runProfileUpdate(ctx context.Context, env *Env, opts registerOptions, changed profileChanges) error {
	if !changed.any() {
		return fmt.Errorf("nothing to update (pass at least one of --name, --birth-date, --gender, --address, --phone)")
	}

	api := env.client(pageProfile)

	profile, err := api.Profile(ctx)
	if err != nil {
		return pageError(err, "failed to load profile data, please try again")
	}

	update := profileUpdateFrom(profile, opts, changed)
	if err := validation.New().Struct(update); err != nil {
		return validation.Errors(err)
	}

	update.PhoneNumber = validation.NormalizePhone(update.PhoneNumber)
	if update.BirthDate != "" {
		date, _ := validation.ParseDate(update.BirthDate)
		update.BirthDate = date.Format(time.RFC3339)
	}

	if err := api.UpdateProfile(ctx, update); err != nil {
		return pageError(err, "failed to update profile")
	}

	fmt.Fprintln(env.stdout(), "✓ Profile updated successfully!")
	return nil
}
