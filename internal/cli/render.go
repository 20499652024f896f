package cli

import (
	"strconv"

	"trackr/internal/domain"
	"trackr/internal/store"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)

	notificationColors = map[store.NotificationType]lipgloss.Color{
		store.NotificationError:   lipgloss.Color("9"),
		store.NotificationWarning: lipgloss.Color("11"),
		store.NotificationInfo:    lipgloss.Color("12"),
		store.NotificationSuccess: lipgloss.Color("10"),
	}
)

func renderEntries(entries []domain.WeightEntry, unit string) string {
	if len(entries) == 0 {
		return "no entries"
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("DATE", "WEIGHT ("+unit+")").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	for _, e := range entries {
		w := domain.ConvertWeight(e.Weight, domain.UnitKg, unit)
		t.Row(e.Date, strconv.FormatFloat(w, 'f', 1, 64))
	}
	return t.Render()
}

func renderNotification(n store.Notification) string {
	style := lipgloss.NewStyle().
		Bold(true).
		Foreground(notificationColors[n.Type]).
		Border(lipgloss.RoundedBorder()).
		Padding(0, 1)
	return style.Render(n.Message + "\n" + n.Description)
}
