package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/lorenzotomasdiez/debate-arena/internal/debate"
	"github.com/lorenzotomasdiez/debate-arena/internal/events"
)

const (
	ansiReset   = "\033[0m"
	ansiBold    = "\033[1m"
	ansiRed     = "\033[31m"
	ansiGreen   = "\033[32m"
	ansiYellow  = "\033[33m"
	ansiBlue    = "\033[34m"
	AnsiMagenta = "\033[35m"
	ansiCyan    = "\033[36m"
)

const momentumBarWidth = 30

// Colorize wraps s with an ANSI color code and reset.
func Colorize(color, s string) string { return color + s + ansiReset }

// Bold wraps s with ANSI bold and reset.
func Bold(s string) string { return ansiBold + s + ansiReset }

func sideColor(s debate.Side) string {
	if s == debate.Con {
		return ansiRed
	}
	return ansiBlue
}

var phaseTitles = map[debate.Status]string{
	debate.StatusPreparing: "Preparing",
	debate.StatusOpening:   "Opening Statements",
	debate.StatusCrossExam: "Cross-Examination",
	debate.StatusRebuttals: "Rebuttals",
	debate.StatusLightning: "Lightning Round",
	debate.StatusClosing:   "Closing Statements",
	debate.StatusVerdict:   "Verdict",
	debate.StatusCompleted: "Debate Complete",
}

// Printer renders a debate's message stream to a terminal.
type Printer struct {
	mu    sync.Mutex
	w     io.Writer
	names map[debate.Side]string
	phase debate.Status
	seen  int // controversy moments already printed
}

// NewPrinter creates a Printer writing to w. A nil w means stdout.
func NewPrinter(w io.Writer) *Printer {
	if w == nil {
		w = os.Stdout
	}
	return &Printer{w: w, names: make(map[debate.Side]string)}
}

// Handle prints one message. It has the events.Handler signature so it
// can subscribe to a hub directly.
func (p *Printer) Handle(msg events.Message) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.print(msg); err != nil {
		fmt.Fprintf(p.w, "%s\n", Colorize(ansiYellow, fmt.Sprintf("[%d] unreadable %s update: %v", msg.Seq, msg.Type, err)))
	}
}

func (p *Printer) print(msg events.Message) error {
	switch msg.Type {
	case debate.UpdateInit:
		var data debate.InitData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return err
		}
		p.printInit(data)
	case debate.UpdateStatus:
		var data debate.StatusData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return err
		}
		p.printStatus(data)
	case debate.UpdateOpening, debate.UpdateRebuttal:
		var st debate.Statement
		if err := json.Unmarshal(msg.Data, &st); err != nil {
			return err
		}
		p.printStatement(msg.Side, st)
	case debate.UpdateCrossExam:
		var data debate.CrossExamData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return err
		}
		p.printCrossExam(data)
	case debate.UpdateLightning:
		var round debate.LightningRound
		if err := json.Unmarshal(msg.Data, &round); err != nil {
			return err
		}
		p.printLightning(round)
	case debate.UpdateClosing:
		var c debate.Closing
		if err := json.Unmarshal(msg.Data, &c); err != nil {
			return err
		}
		fmt.Fprintf(p.w, "%s %q\n", p.speaker(msg.Side), c.Statement)
	case debate.UpdateVerdictJudge:
		var j debate.Judgment
		if err := json.Unmarshal(msg.Data, &j); err != nil {
			return err
		}
		p.printJudgment(msg.JudgeType, j)
	case debate.UpdateVerdictFinal:
		var fs debate.FinalScore
		if err := json.Unmarshal(msg.Data, &fs); err != nil {
			return err
		}
		PrintFinalScore(p.w, fs)
	case debate.UpdateMomentum:
		var m debate.MomentumState
		if err := json.Unmarshal(msg.Data, &m); err != nil {
			return err
		}
		p.printMomentum(m)
	case debate.UpdateControversy:
		var moments []debate.ControversyMoment
		if err := json.Unmarshal(msg.Data, &moments); err != nil {
			return err
		}
		p.printControversy(moments)
	}
	return nil
}

func (p *Printer) printInit(data debate.InitData) {
	fmt.Fprintf(p.w, "\n%s\n", Bold("Topic: "+data.Topic))
	for _, a := range data.Agents {
		p.names[a.Side] = a.Name()
		fmt.Fprintf(p.w, "  %s %s (%s)\n", Colorize(ansiBold+sideColor(a.Side), strings.ToUpper(string(a.Side))), a.Name(), a.Position)
	}
}

func (p *Printer) printStatus(data debate.StatusData) {
	if data.Phase != p.phase {
		p.phase = data.Phase
		PrintPhase(p.w, data.Phase)
	}
	if data.SubLabel != "" {
		fmt.Fprintf(p.w, "%s %s\n", Colorize(ansiYellow, fmt.Sprintf("[%3.0f%%]", data.Progress*100)), data.SubLabel)
	}
}

// PrintPhase prints a phase transition banner.
func PrintPhase(w io.Writer, phase debate.Status) {
	name, ok := phaseTitles[phase]
	if !ok {
		name = string(phase)
	}
	color := ansiCyan
	if phase == debate.StatusVerdict || phase == debate.StatusCompleted {
		color = ansiGreen
	}
	fmt.Fprintf(w, "\n%s\n\n", Colorize(ansiBold+color, "=== Phase: "+name+" ==="))
}

func (p *Printer) speaker(side debate.Side) string {
	name := p.names[side]
	if name == "" {
		name = side.Label()
	}
	return Colorize(ansiBold+sideColor(side), name+":")
}

func (p *Printer) printStatement(side debate.Side, st debate.Statement) {
	arg := st.Argument
	fmt.Fprintf(p.w, "%s %s\n", p.speaker(side), arg.Opening.Text)
	if arg.DirectEngagement != nil && arg.DirectEngagement.Response != "" {
		fmt.Fprintf(p.w, "  > %s\n", arg.DirectEngagement.Response)
	}
	for i, pt := range arg.MainPoints {
		fmt.Fprintf(p.w, "  %d. %s\n", i+1, pt.Claim)
	}
	for _, ev := range arg.Evidence {
		fmt.Fprintf(p.w, "  %s %s (%s)\n", Colorize(ansiYellow, "evidence:"), ev.Claim, ev.Source)
	}
	if arg.Conclusion.Text != "" {
		fmt.Fprintf(p.w, "  %s\n", arg.Conclusion.Text)
	}
	fmt.Fprintln(p.w)
}

func (p *Printer) printCrossExam(data debate.CrossExamData) {
	r := data.Payload
	if r == nil {
		return
	}
	fmt.Fprintf(p.w, "%s %s questions %s\n", Colorize(ansiYellow, fmt.Sprintf("[Round %d]", data.Round)), r.Questioner, r.Respondent)
	for i, q := range r.Questions {
		fmt.Fprintf(p.w, "  Q: %s\n", q.Question)
		if i < len(r.Answers) {
			fmt.Fprintf(p.w, "  A: %s\n", r.Answers[i].Answer)
		}
	}
	if r.Analysis.KeyExchange != "" {
		fmt.Fprintf(p.w, "  key exchange: %s (winner: %s)\n", r.Analysis.KeyExchange, r.Analysis.Winner)
	}
	fmt.Fprintln(p.w)
}

func (p *Printer) printLightning(round debate.LightningRound) {
	for i, q := range round.Questions {
		fmt.Fprintf(p.w, "%s %s\n", Colorize(ansiYellow, fmt.Sprintf("[Q%d]", i+1)), q.Question)
		if i < len(round.ProAnswers) {
			fmt.Fprintf(p.w, "  %s %s\n", p.speaker(debate.Pro), round.ProAnswers[i].Answer)
		}
		if i < len(round.ConAnswers) {
			fmt.Fprintf(p.w, "  %s %s\n", p.speaker(debate.Con), round.ConAnswers[i].Answer)
		}
	}
	for _, c := range round.ConcessionsMade {
		fmt.Fprintf(p.w, "  %s %s\n", Colorize(AnsiMagenta, "concession:"), c)
	}
}

func (p *Printer) printJudgment(judge debate.JudgeType, j debate.Judgment) {
	fmt.Fprintf(p.w, "%s %s: %s %.1f, %s %.1f\n",
		Bold(j.JudgeName),
		judge,
		p.names[debate.Pro], j.Scores.Pro,
		p.names[debate.Con], j.Scores.Con,
	)
	if j.Commentary.Verdict != "" {
		fmt.Fprintf(p.w, "  %s\n", j.Commentary.Verdict)
	}
}

// PrintFinalScore prints the summed verdict.
func PrintFinalScore(w io.Writer, fs debate.FinalScore) {
	if fs.Winner == debate.Tied {
		fmt.Fprintf(w, "\nResult: %s (%.1f each)\n", Colorize(ansiBold+ansiYellow, "Tied"), fs.Pro)
		return
	}
	winner := fs.WinnerName
	if winner == "" {
		winner = fs.Winner
	}
	fmt.Fprintf(w, "\nWinner: %s by %.1f (pro %.1f, con %.1f)\n",
		Colorize(ansiBold+ansiGreen, winner), fs.Margin, fs.Pro, fs.Con)
}

func (p *Printer) printMomentum(m debate.MomentumState) {
	fmt.Fprintf(p.w, "%s %s %s\n", Colorize(ansiYellow, "momentum:"), MomentumBar(m.CurrentScore), string(m.Volatility))
}

// MomentumBar draws the pro share of momentum as a fixed-width bar.
func MomentumBar(s debate.SideScores) string {
	total := s.Pro + s.Con
	pro := momentumBarWidth / 2
	if total > 0 {
		pro = int(s.Pro/total*momentumBarWidth + 0.5)
	}
	return Colorize(ansiBlue, strings.Repeat("#", pro)) +
		Colorize(ansiRed, strings.Repeat("#", momentumBarWidth-pro)) +
		fmt.Sprintf(" %.1f / %.1f", s.Pro, s.Con)
}

// printControversy prints the moments added since the last snapshot.
func (p *Printer) printControversy(moments []debate.ControversyMoment) {
	if len(moments) < p.seen {
		p.seen = 0
	}
	for _, m := range moments[p.seen:] {
		color := ansiYellow
		if m.Impact.Rank() >= debate.ImpactHigh.Rank() {
			color = AnsiMagenta
		}
		fmt.Fprintf(p.w, "%s %s: %s\n", Colorize(ansiBold+color, fmt.Sprintf("[%s %s]", m.Impact, m.Type)), m.Agent, m.Description)
	}
	p.seen = len(moments)
}
