package debate

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/lorenzotomasdiez/debate-arena/internal/openrouter"
)

// Side is one of the two debate positions.
type Side string

const (
	Pro Side = "pro"
	Con Side = "con"
)

// Sides lists both sides in publication order.
var Sides = [2]Side{Pro, Con}

// Opponent returns the other side.
func (s Side) Opponent() Side {
	if s == Pro {
		return Con
	}
	return Pro
}

// Valid reports whether s names a debate side.
func (s Side) Valid() bool { return s == Pro || s == Con }

// Label is the capitalised side name used in descriptions.
func (s Side) Label() string {
	if s == Con {
		return "Con"
	}
	return "Pro"
}

// Status is the phase tag of a debate. Phase statuses double as the
// resume cursor: a debate in status X has not finished phase X yet.
type Status string

const (
	StatusPreparing Status = "preparing"
	StatusOpening   Status = "opening-statements"
	StatusCrossExam Status = "cross-examination"
	StatusRebuttals Status = "rebuttals"
	StatusLightning Status = "lightning-round"
	StatusClosing   Status = "closing-statements"
	StatusVerdict   Status = "verdict"
	StatusCompleted Status = "completed"
	StatusError     Status = "error"
)

// Sequence is the fixed phase order.
var Sequence = []Status{
	StatusOpening,
	StatusCrossExam,
	StatusRebuttals,
	StatusLightning,
	StatusClosing,
	StatusVerdict,
}

var statusRank = map[Status]int{
	StatusPreparing: 0,
	StatusOpening:   1,
	StatusCrossExam: 2,
	StatusRebuttals: 3,
	StatusLightning: 4,
	StatusClosing:   5,
	StatusVerdict:   6,
	StatusCompleted: 7,
}

// Terminal reports whether no further mutation is allowed.
func (s Status) Terminal() bool { return s == StatusCompleted || s == StatusError }

// Known reports whether s is a recognised status.
func (s Status) Known() bool {
	_, ok := statusRank[s]
	return ok || s == StatusError
}

// CanAdvanceTo reports whether moving from s to next keeps the status
// monotonic. Staying in place is allowed so progress can be updated.
// Any non-terminal status may fail into error.
func (s Status) CanAdvanceTo(next Status) bool {
	if s.Terminal() {
		return false
	}
	if next == StatusError {
		return true
	}
	from, ok := statusRank[s]
	if !ok {
		return false
	}
	to, ok := statusRank[next]
	if !ok {
		return false
	}
	return to >= from
}

// Next returns the status that follows s: the first phase after
// preparing, and StatusCompleted after the verdict.
func (s Status) Next() Status {
	if s == StatusPreparing {
		return Sequence[0]
	}
	for i, p := range Sequence {
		if p == s && i+1 < len(Sequence) {
			return Sequence[i+1]
		}
	}
	return StatusCompleted
}

// CurrentPhase describes what the debate is doing right now.
type CurrentPhase struct {
	Type     Status  `json:"type"`
	SubLabel string  `json:"subLabel,omitempty"`
	Progress float64 `json:"progress"`
}

// Debate is the aggregate record of one debate.
type Debate struct {
	ID                 string              `json:"id"`
	Topic              string              `json:"topic"`
	Status             Status              `json:"status"`
	CurrentPhase       CurrentPhase        `json:"currentPhase"`
	Analysis           *Analysis           `json:"analysis,omitempty"`
	Agents             []Agent             `json:"agents"`
	Phases             Phases              `json:"phases"`
	Momentum           MomentumState       `json:"momentum"`
	ControversyMoments []ControversyMoment `json:"controversyMoments"`
	FactChecks         []FactCheck         `json:"factChecks,omitempty"`
	FinalScore         *FinalScore         `json:"finalScore,omitempty"`
	Failure            string              `json:"failure,omitempty"`
	CreatedAt          time.Time           `json:"createdAt"`
	UpdatedAt          time.Time           `json:"updatedAt"`
}

// Agent returns the agent arguing side, if any.
func (d *Debate) Agent(side Side) (Agent, bool) {
	for _, a := range d.Agents {
		if a.Side == side {
			return a, true
		}
	}
	return Agent{}, false
}

// Analysis is the structural read of a topic made before agents exist.
// Its positions are checked when sides are assigned, not by Validate.
type Analysis struct {
	DebateType string     `json:"debateType"`
	Positions  []Position `json:"positions"`
	Complexity string     `json:"complexity"`
}

// Position is one stance identified by topic analysis. Side is optional;
// when every position omits it, the first two are taken as pro and con.
type Position struct {
	Role    string `json:"role"`
	Stance  string `json:"stance"`
	Persona string `json:"persona"`
	Side    Side   `json:"side,omitempty"`
}

// Agent represents a debate participant.
type Agent struct {
	ID           string  `json:"id"`
	Side         Side    `json:"side"`
	Position     string  `json:"position"`
	Stance       string  `json:"stance"`
	Model        string  `json:"model,omitempty"` // OpenRouter model ID
	Persona      Persona `json:"persona"`
	SystemPrompt string  `json:"systemPrompt"`
}

// Name is the persona name, falling back to the side label.
func (a Agent) Name() string {
	if a.Persona.Name != "" {
		return a.Persona.Name
	}
	return a.Side.Label()
}

// Persona is the generated character behind an agent.
type Persona struct {
	Name        string      `json:"name"`
	Age         int         `json:"age,omitempty"`
	Background  string      `json:"background"`
	Traits      Traits      `json:"traits"`
	Motivation  string      `json:"motivation"`
	DebateStyle DebateStyle `json:"debate_style"`
}

// Validate implements Validator.
func (p *Persona) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("persona has no name")
	}
	return nil
}

type Traits struct {
	SpeakingStyle      string   `json:"speaking_style"`
	EmotionalRange     string   `json:"emotional_range"`
	RhetoricPreference string   `json:"rhetoric_preference"`
	Tone               string   `json:"tone"`
	Catchphrases       []string `json:"catchphrases,omitempty"`
	Weaknesses         string   `json:"weaknesses,omitempty"`
}

type DebateStyle struct {
	OpeningMove            string `json:"opening_move"`
	Argumentation          string `json:"argumentation"`
	EngagementWithOpponent string `json:"engagement_with_opponent"`
	ClosingMove            string `json:"closing_move"`
}

// Phases holds one optional payload per phase.
type Phases struct {
	OpeningStatements *SideStatements   `json:"openingStatements,omitempty"`
	CrossExamination  *CrossExamination `json:"crossExamination,omitempty"`
	Rebuttals         *SideStatements   `json:"rebuttals,omitempty"`
	LightningRound    *LightningRound   `json:"lightningRound,omitempty"`
	ClosingStatements *SideClosings     `json:"closingStatements,omitempty"`
	Verdict           *Verdict          `json:"verdict,omitempty"`
}

// SideStatements is a two-slot phase payload. Each slot is written
// independently.
type SideStatements struct {
	ProStatement *Statement `json:"proStatement,omitempty"`
	ConStatement *Statement `json:"conStatement,omitempty"`
}

// Slot returns the slot for side.
func (s *SideStatements) Slot(side Side) **Statement {
	if side == Con {
		return &s.ConStatement
	}
	return &s.ProStatement
}

// Complete reports whether both sides have spoken.
func (s *SideStatements) Complete() bool {
	return s != nil && s.ProStatement != nil && s.ConStatement != nil
}

// Statement is one side's argument in an opening or rebuttal.
type Statement struct {
	Agent     string    `json:"agent"`
	Argument  Argument  `json:"argument"`
	Timestamp time.Time `json:"timestamp"`
}

// Argument is the structured output of an opening or rebuttal call.
type Argument struct {
	Opening          Hook              `json:"opening"`
	MainPoints       []ArgumentPoint   `json:"mainPoints"`
	DirectEngagement *Engagement       `json:"directEngagement,omitempty"`
	PersonalElement  *PersonalElement  `json:"personalElement,omitempty"`
	Evidence         []Evidence        `json:"evidence"`
	Conclusion       Conclusion        `json:"conclusion"`
	KeyMoments       []KeyMoment       `json:"keyMoments"`
	EmotionalJourney *EmotionalJourney `json:"emotional_journey,omitempty"`
	LogicalIssues    []LogicalIssue    `json:"logicalIssues,omitempty"`
}

// Validate implements Validator.
func (a *Argument) Validate() error {
	if a.Opening.Text == "" && len(a.MainPoints) == 0 {
		return fmt.Errorf("argument has neither an opening nor main points")
	}
	return nil
}

type Hook struct {
	Text     string `json:"text"`
	HookType string `json:"hook_type,omitempty"`
}

type ArgumentPoint struct {
	Claim            string `json:"claim"`
	Elaboration      string `json:"elaboration"`
	RhetoricalDevice string `json:"rhetorical_device,omitempty"`
	EmotionalTone    string `json:"emotional_tone,omitempty"`
}

// Engagement tones recognised by the analytic heuristics.
const (
	ToneAggressive    = "aggressive"
	ToneDirect        = "direct"
	ToneCounterAttack = "counter_attack"
)

type Engagement struct {
	OpponentQuote string `json:"opponentQuote,omitempty"`
	Response      string `json:"response"`
	Tone          string `json:"tone"`
}

type PersonalElement struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type Evidence struct {
	Claim             string `json:"claim"`
	Source            string `json:"source"`
	Year              int    `json:"year,omitempty"`
	CredibilitySignal string `json:"credibility_signal,omitempty"`
}

// Conclusion devices.
const (
	DeviceQuestion     = "question"
	DeviceCallToAction = "call_to_action"
	DeviceReframe      = "reframe"
	DeviceCallback     = "callback"
)

type Conclusion struct {
	Text             string `json:"text"`
	RhetoricalDevice string `json:"rhetorical_device,omitempty"`
	CallbackTo       string `json:"callback_to,omitempty"`
}

// Key moment types that count as zingers.
const (
	MomentZinger           = "zinger"
	MomentRhetoricalClimax = "rhetorical_climax"
)

type KeyMoment struct {
	Text        string      `json:"text"`
	Type        string      `json:"type"`
	Position    float64     `json:"timestamp"`
	ImpactLevel ImpactLevel `json:"impact_level"`
}

// ImpactLevel is a 1-3 rating. Models emit it either as a number or as
// a quoted digit, so both decode.
type ImpactLevel int

func (l *ImpactLevel) UnmarshalJSON(b []byte) error {
	var n int
	if err := json.Unmarshal(b, &n); err == nil {
		*l = ImpactLevel(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("impact level: %w", err)
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("impact level %q: %w", s, err)
	}
	*l = ImpactLevel(n)
	return nil
}

type EmotionalJourney struct {
	Start string `json:"start"`
	Peak  string `json:"peak"`
	End   string `json:"end"`
}

type LogicalIssue struct {
	Fallacy  string `json:"fallacy"`
	Severity string `json:"severity,omitempty"`
}

// CrossExamination holds the rounds, indexed from zero.
type CrossExamination struct {
	Rounds []*CrossExamRound `json:"rounds"`
}

// CrossExamRound is one questions, answers, analysis pipeline.
type CrossExamRound struct {
	Questioner     string              `json:"questioner"`
	Respondent     string              `json:"respondent"`
	QuestionerSide Side                `json:"questionerSide"`
	RespondentSide Side                `json:"respondentSide"`
	Questions      []CrossExamQuestion `json:"questions"`
	Answers        []CrossExamAnswer   `json:"answers"`
	Analysis       CrossExamAnalysis   `json:"analysis"`
}

type CrossExamQuestion struct {
	Question       string `json:"question"`
	Intent         string `json:"intent"`
	TargetWeakness string `json:"target_weakness"`
}

// Answer strategies.
const (
	StrategyDirect        = "direct_answer"
	StrategyDeflection    = "deflection"
	StrategyCounterAttack = "counter_attack"
	StrategyConcession    = "concession"
)

type CrossExamAnswer struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Strategy string `json:"strategy"`
	Evasion  bool   `json:"evasion"`
}

// Exchange winners.
const (
	WinnerQuestioner = "questioner"
	WinnerRespondent = "respondent"
	WinnerTie        = "tie"
)

type CrossExamAnalysis struct {
	DirectnessScore float64  `json:"directness_score"`
	ConcessionsMade []string `json:"concessions_made"`
	CounterAttacks  []string `json:"counter_attacks"`
	Evasions        []string `json:"evasions"`
	Winner          string   `json:"winner"`
	KeyExchange     string   `json:"key_exchange"`
}

// Validate implements Validator.
func (a *CrossExamAnalysis) Validate() error {
	if a.DirectnessScore < 0 || a.DirectnessScore > 10 {
		return fmt.Errorf("directness_score %v out of range 0-10", a.DirectnessScore)
	}
	switch a.Winner {
	case WinnerQuestioner, WinnerRespondent, WinnerTie:
		return nil
	}
	return fmt.Errorf("unknown exchange winner %q", a.Winner)
}

// CrossExamQuestions wraps the question list a questioner returns.
type CrossExamQuestions struct {
	Questions []CrossExamQuestion `json:"questions"`
}

// Validate implements Validator.
func (q *CrossExamQuestions) Validate() error {
	if len(q.Questions) == 0 {
		return fmt.Errorf("no cross-examination questions")
	}
	return nil
}

// CrossExamAnswers wraps the answer list a respondent returns.
type CrossExamAnswers struct {
	Answers []CrossExamAnswer `json:"answers"`
}

// Validate implements Validator.
func (a *CrossExamAnswers) Validate() error {
	if len(a.Answers) == 0 {
		return fmt.Errorf("no cross-examination answers")
	}
	return nil
}

// LightningRound is the rapid-fire phase payload.
type LightningRound struct {
	Questions       []LightningQuestion `json:"questions"`
	ProAnswers      []LightningAnswer   `json:"proAnswers"`
	ConAnswers      []LightningAnswer   `json:"conAnswers"`
	ConcessionsMade []string            `json:"concessionsMade"`
}

type LightningQuestion struct {
	Question         string `json:"question"`
	TimeLimitSeconds int    `json:"time_limit_seconds"`
	ForcesPosition   bool   `json:"forces_position"`
}

// LightningQuestions wraps the generated question list.
type LightningQuestions struct {
	Questions []LightningQuestion `json:"questions"`
}

// Validate implements Validator.
func (q *LightningQuestions) Validate() error {
	if len(q.Questions) == 0 {
		return fmt.Errorf("no lightning questions")
	}
	return nil
}

type LightningAnswer struct {
	Question       string `json:"question"`
	Answer         string `json:"answer"`
	WordCount      int    `json:"word_count"`
	ConcessionMade bool   `json:"concession_made"`
}

// Validate implements Validator.
func (a *LightningAnswer) Validate() error {
	if a.Answer == "" {
		return fmt.Errorf("empty lightning answer")
	}
	return nil
}

// SideClosings is the closing phase payload.
type SideClosings struct {
	ProStatement *Closing `json:"proStatement,omitempty"`
	ConStatement *Closing `json:"conStatement,omitempty"`
}

// Slot returns the slot for side.
func (s *SideClosings) Slot(side Side) **Closing {
	if side == Con {
		return &s.ConStatement
	}
	return &s.ProStatement
}

// Complete reports whether both sides have closed.
func (s *SideClosings) Complete() bool {
	return s != nil && s.ProStatement != nil && s.ConStatement != nil
}

// Closing is one side's final line.
type Closing struct {
	Agent     string    `json:"agent"`
	Statement string    `json:"statement"`
	Tone      string    `json:"tone"`
	Timestamp time.Time `json:"timestamp"`
}

// PunchyStatement is the generated closing line.
type PunchyStatement struct {
	Statement string `json:"statement"`
	Tone      string `json:"tone"`
}

// Validate implements Validator.
func (p *PunchyStatement) Validate() error {
	if p.Statement == "" {
		return fmt.Errorf("empty closing statement")
	}
	return nil
}

// JudgeType names one of the three judging criteria.
type JudgeType string

const (
	JudgeLogic    JudgeType = "logic"
	JudgeEvidence JudgeType = "evidence"
	JudgeRhetoric JudgeType = "rhetoric"
)

// JudgeOrder is the reveal order of the verdict phase.
var JudgeOrder = []JudgeType{JudgeLogic, JudgeEvidence, JudgeRhetoric}

// Verdict holds the per-judge judgments.
type Verdict struct {
	LogicScore    *Judgment `json:"logicScore,omitempty"`
	EvidenceScore *Judgment `json:"evidenceScore,omitempty"`
	RhetoricScore *Judgment `json:"rhetoricScore,omitempty"`
}

// Slot returns the slot for judge, or nil for an unknown judge.
func (v *Verdict) Slot(judge JudgeType) **Judgment {
	switch judge {
	case JudgeLogic:
		return &v.LogicScore
	case JudgeEvidence:
		return &v.EvidenceScore
	case JudgeRhetoric:
		return &v.RhetoricScore
	}
	return nil
}

// Judgment is one judge's scored commentary.
type Judgment struct {
	JudgeName  string     `json:"judgeName"`
	Scores     SideScores `json:"scores"`
	Commentary Commentary `json:"commentary"`
}

// Validate implements Validator.
func (j *Judgment) Validate() error {
	if j.Scores.Pro < 0 || j.Scores.Pro > 10 || j.Scores.Con < 0 || j.Scores.Con > 10 {
		return fmt.Errorf("judge scores %v/%v out of range 0-10", j.Scores.Pro, j.Scores.Con)
	}
	return nil
}

type SideScores struct {
	Pro float64 `json:"pro"`
	Con float64 `json:"con"`
}

type Commentary struct {
	Overall     string       `json:"overall"`
	ProAnalysis SideAnalysis `json:"proAnalysis"`
	ConAnalysis SideAnalysis `json:"conAnalysis"`
	Verdict     string       `json:"verdict"`
}

type SideAnalysis struct {
	Strengths      []string `json:"strengths"`
	Weaknesses     []string `json:"weaknesses"`
	StandoutMoment string   `json:"standoutMoment,omitempty"`
	ScoreReasoning string   `json:"score_reasoning"`
}

// Tied is the winner value when both totals match.
const Tied = "tied"

// FinalScore is the summed verdict.
type FinalScore struct {
	Pro        float64 `json:"pro"`
	Con        float64 `json:"con"`
	Winner     string  `json:"winner"` // pro, con or tied
	WinnerName string  `json:"winnerName,omitempty"`
	Margin     float64 `json:"margin"`
}

// MomentumState is the running momentum of a debate.
type MomentumState struct {
	CurrentScore  SideScores      `json:"currentScore"`
	History       []MomentumEvent `json:"history"`
	CurrentLeader string          `json:"currentLeader"` // pro, con or tied
	Volatility    Volatility      `json:"volatility"`
}

// Volatility buckets the recent swing size.
type Volatility string

const (
	Stable   Volatility = "stable"
	Shifting Volatility = "shifting"
	Dramatic Volatility = "dramatic"
)

// MomentumEvent is one scored swing. Phase identifies the contribution
// that produced it, e.g. "opening-statements-pro".
type MomentumEvent struct {
	Timestamp   time.Time `json:"timestamp"`
	Phase       string    `json:"phase"`
	Trigger     string    `json:"trigger"`
	Shift       float64   `json:"shift"`
	Description string    `json:"description"`
}

// ControversyType classifies a notable moment.
type ControversyType string

const (
	Concession ControversyType = "concession"
	Attack     ControversyType = "attack"
	Deflection ControversyType = "deflection"
	Zinger     ControversyType = "zinger"
	Reversal   ControversyType = "reversal"
)

// Impact is the severity of a controversy moment.
type Impact string

const (
	ImpactLow      Impact = "low"
	ImpactMedium   Impact = "medium"
	ImpactHigh     Impact = "high"
	ImpactCritical Impact = "critical"
)

// Rank orders impacts: critical > high > medium > low.
func (i Impact) Rank() int {
	switch i {
	case ImpactCritical:
		return 4
	case ImpactHigh:
		return 3
	case ImpactMedium:
		return 2
	case ImpactLow:
		return 1
	}
	return 0
}

// ControversyMoment is a classified excerpt. Source names the
// contribution it came from.
type ControversyMoment struct {
	Timestamp   time.Time       `json:"timestamp"`
	Type        ControversyType `json:"type"`
	Side        Side            `json:"side"`
	Agent       string          `json:"agent"`
	Description string          `json:"description"`
	Impact      Impact          `json:"impact"`
	Excerpt     string          `json:"excerpt"`
	Source      string          `json:"source,omitempty"`
}

// FactCheck records a claim surfaced from cited evidence.
type FactCheck struct {
	Claim       string    `json:"claim"`
	Agent       string    `json:"agent"`
	Side        Side      `json:"side"`
	Timestamp   time.Time `json:"timestamp"`
	Verdict     string    `json:"verdict"`
	Explanation string    `json:"explanation"`
	Source      string    `json:"source,omitempty"`
}

// PhaseOutput is an analysable contribution. The concrete variants are
// StatementOutput and ExchangeOutput; analytic components switch on them.
type PhaseOutput interface {
	Speaker() Side
	phaseOutput()
}

// StatementOutput wraps an opening or rebuttal argument.
type StatementOutput struct {
	Side     Side
	Argument *Argument
}

func (o StatementOutput) Speaker() Side { return o.Side }
func (StatementOutput) phaseOutput()    {}

// ExchangeOutput wraps a cross-examination round; the respondent is the
// speaker being analysed.
type ExchangeOutput struct {
	Round *CrossExamRound
}

func (o ExchangeOutput) Speaker() Side {
	if o.Round == nil {
		return ""
	}
	return o.Round.RespondentSide
}

func (ExchangeOutput) phaseOutput() {}

// Validator is implemented by generated outputs that can check their own
// shape after decoding.
type Validator interface {
	Validate() error
}

// Prompt is one structured generation request.
type Prompt struct {
	Model  string
	System string
	User   string
}

// LLMClient interface so we can mock the OpenRouter client.
type LLMClient interface {
	ChatCompletion(ctx context.Context, model string, messages []openrouter.Message, opts ...openrouter.RequestOption) (*openrouter.ChatResponse, error)
}

// Generator produces a structured result for a prompt, decoding into out.
// Implementations validate out when it implements Validator.
type Generator interface {
	Generate(ctx context.Context, prompt Prompt, out any) error
}

// MomentumScorer turns a contribution into a momentum event.
type MomentumScorer interface {
	ScoreShift(out PhaseOutput, phaseLabel string) MomentumEvent
}

// ControversyDetector extracts notable moments from a contribution.
type ControversyDetector interface {
	Detect(out PhaseOutput, agent string) []ControversyMoment
}

// JudgePanel supplies the judge personas for the verdict phase and the
// moderator who analyses cross-examination exchanges.
type JudgePanel interface {
	Name(judge JudgeType) string
	SystemPrompt(judge JudgeType) string
	ModeratorPrompt() string
}

// Store is the aggregate store as seen by the engine. Every mutation
// returns ErrDebateNotFound for unknown ids and ErrDebateClosed once the
// debate is terminal.
type Store interface {
	Create(ctx context.Context, d *Debate) error
	Get(ctx context.Context, id string) (*Debate, error)
	SetAgents(ctx context.Context, id string, analysis *Analysis, agents []Agent) error
	SetPhaseStatus(ctx context.Context, id string, phase Status, subLabel string, progress float64) error
	SetSidePayload(ctx context.Context, id string, phase Status, side Side, payload any) error
	SetRoundPayload(ctx context.Context, id string, phase Status, roundIndex int, payload *CrossExamRound) error
	SetLightningRound(ctx context.Context, id string, round *LightningRound) error
	SetJudgeVerdict(ctx context.Context, id string, judge JudgeType, judgment *Judgment) error
	SetFinalScore(ctx context.Context, id string, score FinalScore) error
	AppendMomentumEvent(ctx context.Context, id string, ev MomentumEvent) (MomentumState, error)
	AppendControversyMoment(ctx context.Context, id string, m ControversyMoment) ([]ControversyMoment, error)
	AppendFactChecks(ctx context.Context, id string, checks []FactCheck) error
	Fail(ctx context.Context, id string, cause string) error
}

// UpdateType tags an observer message.
type UpdateType string

const (
	UpdateInit         UpdateType = "init"
	UpdateStatus       UpdateType = "status"
	UpdateOpening      UpdateType = "opening"
	UpdateCrossExam    UpdateType = "cross-exam"
	UpdateRebuttal     UpdateType = "rebuttal"
	UpdateLightning    UpdateType = "lightning"
	UpdateClosing      UpdateType = "closing"
	UpdateVerdictJudge UpdateType = "verdict-judge"
	UpdateVerdictFinal UpdateType = "verdict-final"
	UpdateMomentum     UpdateType = "momentum"
	UpdateControversy  UpdateType = "controversy"
)

// Update is an observable mutation before it is sequenced onto a channel.
type Update struct {
	Type      UpdateType
	Side      Side
	JudgeType JudgeType
	Data      any
}

// InitData is the payload of an init update.
type InitData struct {
	DebateID string    `json:"debateId"`
	Topic    string    `json:"topic"`
	Agents   []Agent   `json:"agents"`
	Analysis *Analysis `json:"analysis,omitempty"`
}

// StatusData is the payload of a status update.
type StatusData struct {
	Phase    Status  `json:"phase"`
	SubLabel string  `json:"subLabel,omitempty"`
	Progress float64 `json:"progress"`
}

// CrossExamData is the payload of a cross-exam update.
type CrossExamData struct {
	Round   int             `json:"round"` // 1-based
	Payload *CrossExamRound `json:"payload"`
}

// Publisher mirrors store mutations onto the per-debate channel.
type Publisher interface {
	Publish(ctx context.Context, debateID string, u Update) error
	Close(debateID string)
}
