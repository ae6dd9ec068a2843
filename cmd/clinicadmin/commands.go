package main

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/korylprince/dental-receptionist/api"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	brandPrimary = lipgloss.Color("#0EA5E9") // Sky
	brandAccent  = lipgloss.Color("#10B981") // Emerald
	brandError   = lipgloss.Color("#EF4444") // Red
	textMuted    = lipgloss.Color("#6B7280") // Gray

	titleStyle = lipgloss.NewStyle().
			Foreground(brandPrimary).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(brandAccent).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(brandError).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(textMuted)

	cellStyle = lipgloss.NewStyle().Padding(0, 1)
)

func appointmentsCmd() *cobra.Command {
	var filters api.AppointmentFilters

	cmd := &cobra.Command{
		Use:   "appointments",
		Short: "List appointments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newClient()
			stats, err := c.Stats(cmd.Context(), "")
			if err != nil {
				return err
			}
			list, err := c.Appointments(cmd.Context(), filters)
			if err != nil {
				return err
			}

			fmt.Println(renderStats(*stats))
			if len(list) == 0 {
				fmt.Println(dimStyle.Render("No appointments found"))
				return nil
			}
			fmt.Println(renderAppointments(list))
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&filters.Date, "date", "", "Only show appointments on this date (YYYY-MM-DD)")
	f.StringVar(&filters.Status, "status", "", "Only show appointments with this status (confirmed, cancelled)")
	f.StringVar(&filters.Search, "search", "", "Only show patients whose name contains this text")

	return cmd
}

func renderStats(s api.Stats) string {
	stat := func(n int, label string) string {
		return titleStyle.Render(strconv.Itoa(n)) + " " + dimStyle.Render(label)
	}
	return strings.Join([]string{
		stat(s.Today, "Today"),
		stat(s.Confirmed, "Confirmed"),
		stat(s.Cancelled, "Cancelled"),
		stat(s.All, "All"),
	}, "   ")
}

func renderAppointments(list []*api.Appointment) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(dimStyle).
		Headers("ID", "PATIENT", "PHONE", "SERVICE", "DATE", "TIME", "STATUS").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return cellStyle.Bold(true).Foreground(brandPrimary)
			}
			if col == 6 && list[row].Status == api.StatusCancelled {
				return cellStyle.Foreground(brandError)
			}
			return cellStyle
		})

	for _, a := range list {
		t.Row(
			strconv.FormatInt(a.ID, 10),
			a.PatientName,
			a.Phone,
			api.FormatService(a.Service),
			api.FormatDate(a.Date),
			api.FormatTime(a.Time),
			string(a.Status),
		)
	}

	return t.String()
}

func cancelCmd() *cobra.Command {
	var reason string

	cmd := &cobra.Command{
		Use:   "cancel <id>",
		Short: "Cancel a confirmed appointment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid appointment id %q", args[0])
			}
			if err = newClient().CancelAppointment(cmd.Context(), id, reason); err != nil {
				return err
			}
			fmt.Println(successStyle.Render(fmt.Sprintf("Appointment %d cancelled", id)))
			return nil
		},
	}

	cmd.Flags().StringVar(&reason, "reason", api.DefaultCancelReason, "Reason recorded with the cancellation")

	return cmd
}

func settingsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "settings",
		Short: "Show clinic settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newClient().Settings(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Println(renderSettings(s))
			return nil
		},
	}
}

func renderSettings(s *api.Settings) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(s.Info.Name) + "\n")
	fmt.Fprintf(&b, "%s\n%s  %s\n\n", s.Info.Address, s.Info.Phone, s.Info.Email)

	b.WriteString(titleStyle.Render("Opening Hours") + "\n")
	for _, day := range api.DaysOfWeek {
		hours, _ := s.Hours.Day(day)
		fmt.Fprintf(&b, "  %-10s %s\n", day, hours)
	}

	b.WriteString("\n" + titleStyle.Render("Services & Pricing") + "\n")
	keys := make([]string, 0, len(s.Services))
	for key := range s.Services {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return serviceOrder(keys[i]) < serviceOrder(keys[j]) })
	for _, key := range keys {
		svc := s.Services[key]
		fmt.Fprintf(&b, "  %-18s %3d min  %s\n", svc.Name, svc.DurationMin, svc.Price)
	}

	return strings.TrimRight(b.String(), "\n")
}

func serviceOrder(key string) int {
	for i, k := range api.ServiceKeys {
		if k == key {
			return i
		}
	}
	return len(api.ServiceKeys)
}

func setHoursCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-hours <day> <hours>",
		Short: `Set the opening hours for a day, e.g. set-hours saturday "10:00 AM – 2:00 PM"`,
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newClient()
			s, err := c.Settings(cmd.Context())
			if err != nil {
				return err
			}

			hours := s.Hours
			if err = hours.SetDay(args[0], strings.Join(args[1:], " ")); err != nil {
				return err
			}
			if err = c.SaveSettings(cmd.Context(), &api.SettingsUpdate{Hours: &hours}); err != nil {
				return err
			}

			fmt.Println(successStyle.Render("Opening hours saved"))
			return nil
		},
	}
}

var stdin = bufio.NewReader(os.Stdin)

func readPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		pass, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		return string(pass), err
	}
	line, err := stdin.ReadString('\n')
	return strings.TrimRight(line, "\r\n"), err
}

func passwdCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "passwd",
		Short: "Change the admin password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			current := config.Password
			var err error
			if current == "" {
				if current, err = readPassword("Current password: "); err != nil {
					return err
				}
			}
			newPassword, err := readPassword("New password: ")
			if err != nil {
				return err
			}
			confirm, err := readPassword("Confirm new password: ")
			if err != nil {
				return err
			}

			if err = newClient().ChangePassword(cmd.Context(), current, newPassword, confirm); err != nil {
				return err
			}

			fmt.Println(successStyle.Render("Password updated successfully"))
			return nil
		},
	}
}
