package main

import (
	"errors"
	"fmt"
	"maps"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/gwillem/grillmonster/pkg/prop"
)

var (
	headerStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	subHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	successStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

type CalibrateCommand struct{}

func (c *CalibrateCommand) Execute(args []string) error {
	fmt.Println(headerStyle.Render("Grill Monster Calibration"))
	fmt.Println(dimStyle.Render("━━━━━━━━━━━━━━━━━━━━━━━━━"))
	fmt.Println()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	p, err := prop.OpenHardware(cfg)
	if err != nil {
		return err
	}
	defer p.Close()

	if err := p.SetFrequency(cfg.PWMFrequency); err != nil {
		return err
	}

	cal := maps.Clone(cfg.Calibration)
	for _, name := range prop.AllServos() {
		fmt.Println(subHeaderStyle.Render("━━━ " + string(name) + " ━━━"))
		fmt.Println()

		sc := cal[name]
		if sc.Open, err = jogServo(p, name, prop.Open, sc.Open); err != nil {
			return err
		}
		if sc.Closed, err = jogServo(p, name, prop.Closed, sc.Closed); err != nil {
			return err
		}
		cal[name] = sc
		fmt.Println()
	}

	fmt.Println(renderCalibration(cal))
	fmt.Println()

	save := true
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(saveTitle(opts.Config, prop.ConfigExists(opts.Config))).
				Affirmative("Save").
				Negative("Discard").
				Value(&save),
		),
	)
	if err := form.Run(); err != nil {
		return err
	}
	if !save {
		fmt.Println(dimStyle.Render("Calibration discarded."))
		return nil
	}

	cfg.Calibration = cal
	if err := cfg.SaveTo(opts.Config); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	fmt.Println(successStyle.Render("Calibration saved to " + opts.Config))
	return nil
}

// jogServo moves a servo to pulse-widths entered by the operator until they
// confirm it sits at pos.
func jogServo(p *prop.Prop, name prop.ServoName, pos prop.Position, start int) (int, error) {
	value := strconv.Itoa(start)
	for {
		input := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title(fmt.Sprintf("%s %s pulse-width", name, pos)).
					Description(fmt.Sprintf("0-%d, the servo moves when you press enter", prop.MaxPulse)).
					Value(&value).
					Validate(validatePulse),
			),
		)
		if err := input.Run(); err != nil {
			return 0, err
		}

		pulse, _ := strconv.Atoi(value)
		if err := p.SetPulse(name, pulse); err != nil {
			return 0, err
		}

		var ok bool
		confirm := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("Is the %s %s?", name, pos)).
					Affirmative("Yes").
					Negative("Adjust").
					Value(&ok),
			),
		)
		if err := confirm.Run(); err != nil {
			return 0, err
		}
		if ok {
			return pulse, nil
		}
	}
}

func saveTitle(path string, exists bool) string {
	if exists {
		return "Update calibration in " + path + "?"
	}
	return "Create " + path + " with this calibration?"
}

func validatePulse(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil {
		return errors.New("enter a whole number")
	}
	return prop.CheckPulse(n)
}

func renderCalibration(cal prop.Calibration) string {
	tableHeaderStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).Padding(0, 1)
	tableServoStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Padding(0, 1)
	tableCellStyle := lipgloss.NewStyle().Padding(0, 1)

	rows := make([][]string, 0, len(cal))
	for _, name := range prop.AllServos() {
		sc := cal[name]
		rows = append(rows, []string{
			string(name),
			strconv.Itoa(sc.Channel),
			strconv.Itoa(sc.Open),
			strconv.Itoa(sc.Closed),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(dimStyle).
		Headers("Servo", "Channel", "Open", "Closed").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeaderStyle
			}
			if col == 0 {
				return tableServoStyle
			}
			return tableCellStyle
		})

	return t.Render()
}
