package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"foliotrack/internal/application"
	"foliotrack/internal/domain"
)

const maxLogLines = 200

// Commentator generates a portfolio commentary on demand. Nil disables
// the commentary key.
type Commentator interface {
	Comment(ctx context.Context) (string, error)
}

// row holds the rendered state of one holding. Prices and derived figures
// arrive asynchronously and stay blank until the first refresh completes.
type row struct {
	symbol       string
	name         string
	allocation   float64
	shares       float64
	initialPrice string
	currentPrice string
	profitLoss   string
	plSign       int
	purchaseDate string
	daysOwned    string
}

// Model is the terminal UI. It is the single consumer of the application
// queue: a tick every 100ms drains pending messages and applies them, so
// all state changes happen on the update loop.
type Model struct {
	service     *application.PortfolioService
	coordinator *application.Coordinator
	queue       *application.Queue
	commentator Commentator

	rows        []row
	totalPL     string
	totalSign   int
	totalValue  string
	lastUpdated string
	updating    bool

	spinner  spinner.Model
	logView  viewport.Model
	logLines []string

	width   int
	height  int
	closing bool
}

func NewModel(service *application.PortfolioService, coordinator *application.Coordinator, queue *application.Queue, commentator Commentator) Model {
	sp := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(ColorPrimary)),
	)
	lv := viewport.New(80, 8)

	m := Model{
		service:     service,
		coordinator: coordinator,
		queue:       queue,
		commentator: commentator,
		spinner:     sp,
		logView:     lv,
	}
	m.rebuildRows(service.Holdings())
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(tickCmd(), m.spinner.Tick)
}

func tickCmd() tea.Cmd {
	return tea.Tick(drainInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.closing = true
			m.queue.Close()
			return m, tea.Quit
		case "r":
			if err := m.coordinator.TriggerUpdate(context.Background()); errors.Is(err, application.ErrUpdateInProgress) {
				m.appendLog("Update already in progress.")
			}
			return m, nil
		case "c":
			cmd := m.requestCommentary()
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.logView.Width = msg.Width - 2
		m.logView.Height = max(4, msg.Height-len(m.rows)-10)
		return m, nil

	case tickMsg:
		if m.closing {
			return m, nil
		}
		for _, qm := range m.queue.Drain() {
			m.apply(qm)
		}
		return m, tickCmd()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.logView, cmd = m.logView.Update(msg)
	return m, cmd
}

// requestCommentary kicks off generation on its own goroutine. The result
// comes back through the queue like every other background update.
func (m *Model) requestCommentary() tea.Cmd {
	if m.commentator == nil {
		m.appendLog("Commentary is not configured.")
		return nil
	}
	m.appendLog("Generating commentary...")
	commentator := m.commentator
	queue := m.queue
	go func() {
		text, err := commentator.Comment(context.Background())
		if err != nil {
			queue.Push(application.LogLine{Text: fmt.Sprintf("Commentary error: %v", err)})
			return
		}
		queue.Push(application.CommentaryReady{Text: text})
	}()
	return nil
}

func (m *Model) apply(msg application.Message) {
	switch msg := msg.(type) {
	case application.RowUpdate:
		i := m.rowIndex(msg.Index, msg.Symbol)
		if i < 0 {
			return
		}
		m.rows[i].currentPrice = formatDecimal(msg.CurrentPrice)
		m.rows[i].profitLoss = formatDecimal(msg.ProfitLoss)
		m.rows[i].plSign = msg.ProfitLoss.Cmp(domain.Zero)
		if msg.HasDays {
			m.rows[i].daysOwned = fmt.Sprintf("%d", msg.DaysOwned)
		} else {
			m.rows[i].daysOwned = "N/A"
		}

	case application.TotalsUpdate:
		m.totalPL = formatDecimal(msg.TotalPL)
		m.totalSign = msg.TotalPL.Cmp(domain.Zero)
		m.totalValue = formatDecimal(msg.TotalValue)
		m.lastUpdated = msg.At.Format("15:04:05")

	case application.NameUpdate:
		i := m.rowIndex(msg.Index, msg.Symbol)
		if i < 0 {
			return
		}
		m.rows[i].name = msg.Name
		if err := m.service.SetHoldingName(msg.Symbol, msg.Name); err != nil {
			slog.Warn("failed to persist company name", "symbol", msg.Symbol, "error", err)
		}

	case application.StatusUpdate:
		m.updating = msg.Updating

	case application.PortfolioChanged:
		m.rebuildRows(msg.Holdings)

	case application.CommentaryReady:
		for _, line := range strings.Split(strings.TrimSpace(msg.Text), "\n") {
			m.appendLog(line)
		}

	case application.LogLine:
		m.appendLog(msg.Text)
	}
}

// rowIndex resolves a message to a row. The index hint is used when it
// still matches; otherwise the symbol is searched, since rows can shift
// between the time a refresh starts and its messages arrive.
func (m *Model) rowIndex(hint int, symbol string) int {
	if hint >= 0 && hint < len(m.rows) && m.rows[hint].symbol == symbol {
		return hint
	}
	for i := range m.rows {
		if m.rows[i].symbol == symbol {
			return i
		}
	}
	return -1
}

func (m *Model) rebuildRows(holdings []domain.Holding) {
	rows := make([]row, len(holdings))
	for i, h := range holdings {
		name := h.Name
		if name == "" {
			name = h.Symbol
		}
		date := h.PurchaseDate
		if date == "" {
			date = "N/A"
		}
		rows[i] = row{
			symbol:       h.Symbol,
			name:         name,
			allocation:   h.Allocation,
			shares:       h.Shares,
			initialPrice: formatDecimal(h.InitialPrice),
			purchaseDate: date,
			daysOwned:    "N/A",
		}
	}
	// Carry forward prices already on screen so an add or delete does not
	// blank the whole table until the next refresh.
	for i := range rows {
		for j := range m.rows {
			if m.rows[j].symbol == rows[i].symbol {
				rows[i].currentPrice = m.rows[j].currentPrice
				rows[i].profitLoss = m.rows[j].profitLoss
				rows[i].plSign = m.rows[j].plSign
				rows[i].daysOwned = m.rows[j].daysOwned
				break
			}
		}
	}
	m.rows = rows
}

func (m *Model) appendLog(line string) {
	m.logLines = append(m.logLines, line)
	if len(m.logLines) > maxLogLines {
		m.logLines = m.logLines[len(m.logLines)-maxLogLines:]
	}
	m.logView.SetContent(strings.Join(m.logLines, "\n"))
	m.logView.GotoBottom()
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("Portfolio Tracker"))
	if m.updating {
		b.WriteString("  " + m.spinner.View() + LabelStyle.Render("updating..."))
	}
	b.WriteString("\n\n")

	b.WriteString(m.renderTable())
	b.WriteString("\n")

	if m.totalValue != "" {
		b.WriteString(LabelStyle.Render("Total Value: "))
		b.WriteString("$" + m.totalValue)
		b.WriteString(LabelStyle.Render("   Total P/L: "))
		b.WriteString(plStyle(m.totalSign).Render("$" + m.totalPL))
		b.WriteString(LabelStyle.Render("   Updated: "))
		b.WriteString(m.lastUpdated)
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(LogTitleStyle.Render("Log"))
	b.WriteString("\n")
	b.WriteString(m.logView.View())
	b.WriteString("\n\n")

	b.WriteString(helpLine())
	return b.String()
}

func (m Model) renderTable() string {
	var b strings.Builder
	header := fmt.Sprintf("%-8s %-24s %7s %10s %10s %10s %12s %-12s %6s",
		"Sym", "Name", "Alloc%", "Shares", "Buy", "Current", "P/L", "Purchased", "Days")
	b.WriteString(HeaderStyle.Render(header))
	b.WriteString("\n")

	if len(m.rows) == 0 {
		b.WriteString(LabelStyle.Render("No holdings. Add one via the control API."))
		b.WriteString("\n")
		return b.String()
	}

	for _, r := range m.rows {
		current := r.currentPrice
		if current == "" {
			current = "-"
		}
		pl := r.profitLoss
		if pl == "" {
			pl = "-"
		}
		line := fmt.Sprintf("%-8s %-24s %7.2f %10.2f %10s %10s ",
			r.symbol, truncate(r.name, 24), r.allocation, r.shares, r.initialPrice, current)
		b.WriteString(line)
		b.WriteString(plStyle(r.plSign).Render(fmt.Sprintf("%12s", pl)))
		b.WriteString(fmt.Sprintf(" %-12s %6s", r.purchaseDate, r.daysOwned))
		b.WriteString("\n")
	}
	return b.String()
}

func helpLine() string {
	parts := []string{
		KeyStyle.Render("r") + DescStyle.Render(" refresh"),
		KeyStyle.Render("c") + DescStyle.Render(" commentary"),
		KeyStyle.Render("q") + DescStyle.Render(" quit"),
	}
	return strings.Join(parts, DescStyle.Render("  •  "))
}

func formatDecimal(d domain.Decimal) string {
	v, err := d.Float64()
	if err != nil {
		return d.String()
	}
	return fmt.Sprintf("%.2f", v)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
