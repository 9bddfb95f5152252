package output

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/lorenzotomasdiez/debate-arena/internal/debate"
	"github.com/lorenzotomasdiez/debate-arena/internal/debate/controversy"
)

const maxSlugLen = 50

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// GenerateSlug turns a topic into a lowercase, dash-separated folder name.
func GenerateSlug(topic string) string {
	slug := strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(topic), "-"), "-")
	if len(slug) > maxSlugLen {
		slug = strings.TrimRight(slug[:maxSlugLen], "-")
	}
	if slug == "" {
		slug = "debate"
	}
	return slug
}

// CreateOutputDir creates <base>/<slug>-<timestamp> and returns its path.
func CreateOutputDir(base, slug string) (string, error) {
	dir := filepath.Join(base, fmt.Sprintf("%s-%s", slug, time.Now().Format("20060102-150405")))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("output: create %s: %w", dir, err)
	}
	return dir, nil
}

// Writer saves the artifacts of one debate run into a directory.
type Writer struct {
	dir     string
	mu      sync.Mutex
	entries []string
}

func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

// Dir returns the output directory.
func (w *Writer) Dir() string { return w.dir }

// Log records a timestamped line and appends it to debate.log right away,
// so an interrupted run still leaves a log behind.
func (w *Writer) Log(msg string) {
	line := fmt.Sprintf("%s %s", time.Now().Format(time.RFC3339), msg)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.entries = append(w.entries, line)

	f, err := os.OpenFile(filepath.Join(w.dir, "debate.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return
	}
	defer f.Close()
	fmt.Fprintln(f, line)
}

// WriteLog rewrites debate.log from every entry logged so far.
func (w *Writer) WriteLog() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	var b strings.Builder
	for _, e := range w.entries {
		b.WriteString(e)
		b.WriteByte('\n')
	}
	if err := os.WriteFile(filepath.Join(w.dir, "debate.log"), []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("output: write log: %w", err)
	}
	return nil
}

// WriteJSON saves the full debate record as debate.json.
func (w *Writer) WriteJSON(d *debate.Debate) error {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("output: encode debate: %w", err)
	}
	if err := os.WriteFile(filepath.Join(w.dir, "debate.json"), data, 0o644); err != nil {
		return fmt.Errorf("output: write debate.json: %w", err)
	}
	return nil
}

// WriteMarkdown saves a readable report of the debate as report.md.
func (w *Writer) WriteMarkdown(d *debate.Debate) error {
	if err := os.WriteFile(filepath.Join(w.dir, "report.md"), []byte(Report(d)), 0o644); err != nil {
		return fmt.Errorf("output: write report.md: %w", err)
	}
	return nil
}

// Report renders d as markdown.
func Report(d *debate.Debate) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", d.Topic)
	fmt.Fprintf(&b, "- Debate: `%s`\n- Status: %s\n", d.ID, d.Status)
	if d.Failure != "" {
		fmt.Fprintf(&b, "- Failure: %s\n", d.Failure)
	}
	b.WriteString("\n## Debaters\n\n")
	for _, a := range d.Agents {
		fmt.Fprintf(&b, "- **%s** (%s): %s\n", a.Name(), a.Side, a.Stance)
	}

	name := func(side debate.Side) string {
		if a, ok := d.Agent(side); ok {
			return a.Name()
		}
		return side.Label()
	}

	writeStatements := func(title string, s *debate.SideStatements) {
		if s == nil {
			return
		}
		fmt.Fprintf(&b, "\n## %s\n", title)
		for _, side := range debate.Sides {
			st := *s.Slot(side)
			if st == nil {
				continue
			}
			fmt.Fprintf(&b, "\n### %s\n\n%s\n\n", name(side), st.Argument.Opening.Text)
			for _, pt := range st.Argument.MainPoints {
				fmt.Fprintf(&b, "- %s\n", pt.Claim)
			}
			if st.Argument.Conclusion.Text != "" {
				fmt.Fprintf(&b, "\n> %s\n", st.Argument.Conclusion.Text)
			}
		}
	}

	writeStatements("Opening Statements", d.Phases.OpeningStatements)

	if ce := d.Phases.CrossExamination; ce != nil {
		b.WriteString("\n## Cross-Examination\n")
		for i, r := range ce.Rounds {
			if r == nil {
				continue
			}
			fmt.Fprintf(&b, "\n### Round %d: %s questions %s\n\n", i+1, r.Questioner, r.Respondent)
			for j, q := range r.Questions {
				fmt.Fprintf(&b, "- **Q:** %s\n", q.Question)
				if j < len(r.Answers) {
					fmt.Fprintf(&b, "  **A:** %s\n", r.Answers[j].Answer)
				}
			}
		}
	}

	writeStatements("Rebuttals", d.Phases.Rebuttals)

	if lr := d.Phases.LightningRound; lr != nil {
		b.WriteString("\n## Lightning Round\n\n")
		for i, q := range lr.Questions {
			fmt.Fprintf(&b, "%d. %s\n", i+1, q.Question)
			if i < len(lr.ProAnswers) {
				fmt.Fprintf(&b, "   - %s: %s\n", name(debate.Pro), lr.ProAnswers[i].Answer)
			}
			if i < len(lr.ConAnswers) {
				fmt.Fprintf(&b, "   - %s: %s\n", name(debate.Con), lr.ConAnswers[i].Answer)
			}
		}
	}

	if cs := d.Phases.ClosingStatements; cs != nil {
		b.WriteString("\n## Closing Statements\n\n")
		for _, side := range debate.Sides {
			if c := *cs.Slot(side); c != nil {
				fmt.Fprintf(&b, "- **%s:** %s\n", name(side), c.Statement)
			}
		}
	}

	if v := d.Phases.Verdict; v != nil {
		b.WriteString("\n## Verdict\n\n| Judge | Criterion | Pro | Con |\n|---|---|---|---|\n")
		for _, judge := range debate.JudgeOrder {
			if j := *v.Slot(judge); j != nil {
				fmt.Fprintf(&b, "| %s | %s | %.1f | %.1f |\n", j.JudgeName, judge, j.Scores.Pro, j.Scores.Con)
			}
		}
	}
	if fs := d.FinalScore; fs != nil {
		if fs.Winner == debate.Tied {
			fmt.Fprintf(&b, "\n**Result:** tied at %.1f\n", fs.Pro)
		} else {
			fmt.Fprintf(&b, "\n**Winner:** %s by %.1f (%.1f to %.1f)\n", fs.WinnerName, fs.Margin, fs.Pro, fs.Con)
		}
	}

	if top := controversy.Top(d.ControversyMoments, 3); len(top) > 0 {
		b.WriteString("\n## Highlights\n\n")
		for _, m := range top {
			fmt.Fprintf(&b, "- %s\n", controversy.ShareableClip(m))
		}
	}

	fmt.Fprintf(&b, "\n## Momentum\n\nFinal: pro %.1f, con %.1f (%s, %s)\n",
		d.Momentum.CurrentScore.Pro, d.Momentum.CurrentScore.Con, d.Momentum.CurrentLeader, d.Momentum.Volatility)
	return b.String()
}
