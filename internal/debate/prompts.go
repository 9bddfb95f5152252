package debate

import (
	"encoding/json"
	"fmt"
	"strings"
)

const analysisSystem = `You are the moderator of a live debate show. Before the debate starts you read the topic and decide who should argue it.
Identify the debate type, the two opposing positions and a persona sketch for each.`

func analysisPrompt(model, topic string) Prompt {
	return Prompt{
		Model:  model,
		System: analysisSystem,
		User: fmt.Sprintf(`Analyze this debate topic: %q

Respond with a JSON object:
{
  "debateType": "policy | ethical | factual | value | comparative",
  "complexity": "low | medium | high",
  "positions": [
    {"role": "short role name", "stance": "one sentence stance", "persona": "who would argue this", "side": "pro"},
    {"role": "short role name", "stance": "one sentence stance", "persona": "who would argue this", "side": "con"}
  ]
}
Exactly two positions: one arguing for the motion (pro) and one against it (con).`, topic),
	}
}

func personaPrompt(model, topic string, pos Position) Prompt {
	return Prompt{
		Model:  model,
		System: "You create vivid, believable debate personas. They must feel like real people with a history, not caricatures.",
		User: fmt.Sprintf(`Topic: %q
Role: %s
Stance: %s
Persona sketch: %s

Create a debater who holds this stance. Respond with a JSON object:
{
  "name": "full name",
  "age": 45,
  "background": "two sentences of relevant history",
  "traits": {
    "speaking_style": "...",
    "emotional_range": "...",
    "rhetoric_preference": "...",
    "tone": "...",
    "catchphrases": ["..."],
    "weaknesses": "..."
  },
  "motivation": "why this matters to them personally",
  "debate_style": {
    "opening_move": "...",
    "argumentation": "...",
    "engagement_with_opponent": "...",
    "closing_move": "..."
  }
}`, topic, pos.Role, pos.Stance, pos.Persona),
	}
}

// agentSystemPrompt is the standing instruction for one debater.
func agentSystemPrompt(p Persona, stance, topic string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are %s", p.Name)
	if p.Age > 0 {
		fmt.Fprintf(&b, ", %d", p.Age)
	}
	fmt.Fprintf(&b, ". %s\n\n", p.Background)
	fmt.Fprintf(&b, "You are debating: %q\nYour stance: %s\n\n", topic, stance)
	fmt.Fprintf(&b, "WHY YOU CARE: %s\n\n", p.Motivation)
	b.WriteString("HOW YOU SPEAK:\n")
	fmt.Fprintf(&b, "- Style: %s\n- Tone: %s\n- Emotional range: %s\n- Favourite rhetoric: %s\n",
		p.Traits.SpeakingStyle, p.Traits.Tone, p.Traits.EmotionalRange, p.Traits.RhetoricPreference)
	if len(p.Traits.Catchphrases) > 0 {
		fmt.Fprintf(&b, "- Phrases you reach for: %s\n", strings.Join(p.Traits.Catchphrases, "; "))
	}
	if p.Traits.Weaknesses != "" {
		fmt.Fprintf(&b, "- Your blind spot: %s\n", p.Traits.Weaknesses)
	}
	b.WriteString("\nHOW YOU DEBATE:\n")
	fmt.Fprintf(&b, "- Opening: %s\n- Argument: %s\n- Engaging the opponent: %s\n- Closing: %s\n",
		p.DebateStyle.OpeningMove, p.DebateStyle.Argumentation, p.DebateStyle.EngagementWithOpponent, p.DebateStyle.ClosingMove)
	b.WriteString("\nStay in character. Never mention that you are an AI. Speak to persuade a live audience, not to write an essay.")
	return b.String()
}

const argumentShape = `Respond with a JSON object:
{
  "opening": {"text": "...", "hook_type": "question | statistic | story | provocative"},
  "mainPoints": [{"claim": "...", "elaboration": "...", "rhetorical_device": "...", "emotional_tone": "..."}],
  "directEngagement": {"opponentQuote": "...", "response": "...", "tone": "aggressive | direct | counter_attack | respectful"},
  "personalElement": {"type": "anecdote | experience | value", "text": "..."},
  "evidence": [{"claim": "...", "source": "...", "year": 2024, "credibility_signal": "..."}],
  "conclusion": {"text": "...", "rhetorical_device": "question | call_to_action | reframe | callback", "callback_to": "..."},
  "keyMoments": [{"text": "...", "type": "zinger | rhetorical_climax | emotional_peak", "timestamp": 0.5, "impact_level": 1}],
  "emotional_journey": {"start": "...", "peak": "...", "end": "..."},
  "logicalIssues": [{"fallacy": "...", "severity": "minor | major"}]
}`

func openingPrompt(agent Agent, topic string) Prompt {
	return Prompt{
		Model:  agent.Model,
		System: agent.SystemPrompt,
		User: fmt.Sprintf(`Deliver your opening statement on %q.

Requirements:
- A hook in the first line that makes the audience lean in
- Exactly three main points, each a claim with a short elaboration
- One personal element from your own life
- Anticipate the strongest objection from the other side and answer it
- A conclusion that lands, ideally calling back to your hook
- Mark your key moments and the emotional journey of the speech
- Cite evidence with a source and year when you have it

%s`, topic, argumentShape),
	}
}

func rebuttalPrompt(agent Agent, topic string, opponent *Statement, exchanges []*CrossExamRound) Prompt {
	return Prompt{
		Model:  agent.Model,
		System: agent.SystemPrompt,
		User: fmt.Sprintf(`Deliver your rebuttal on %q.

Your opponent's opening statement:
%s

What happened in cross-examination:
%s

Requirements:
- Quote your opponent directly and take the quote apart (directEngagement is required)
- Use anything they conceded or dodged in cross-examination
- Name any logical fallacy you caught in logicalIssues
- Reinforce, do not repeat, your own strongest point
- End on a line the audience will remember

%s`, topic, jsonBlock(opponent), jsonBlock(exchanges), argumentShape),
	}
}

func crossExamQuestionsPrompt(questioner, respondent Agent, topic string, target *Statement) Prompt {
	return Prompt{
		Model:  questioner.Model,
		System: questioner.SystemPrompt,
		User: fmt.Sprintf(`Cross-examination on %q. You are questioning %s.

Their opening statement:
%s

Ask exactly two pointed questions. Each should expose a contradiction, force a yes or no, or pin down something they avoided. No speeches, no compound questions.

Respond with a JSON object:
{"questions": [{"question": "...", "intent": "what you want them to admit", "target_weakness": "the weakness you are aiming at"}]}`,
			topic, respondent.Name(), jsonBlock(target)),
	}
}

func crossExamAnswersPrompt(respondent, questioner Agent, questions []CrossExamQuestion) Prompt {
	var b strings.Builder
	for i, q := range questions {
		fmt.Fprintf(&b, "%d. %s\n", i+1, q.Question)
	}
	return Prompt{
		Model:  respondent.Model,
		System: respondent.SystemPrompt,
		User: fmt.Sprintf(`%s is cross-examining you. Answer each question in at most 15 words.

%s
Pick a strategy per answer: direct_answer, deflection, counter_attack or concession. Set evasion to true when you did not actually answer.

Respond with a JSON object:
{"answers": [{"question": "...", "answer": "...", "strategy": "direct_answer", "evasion": false}]}`,
			questioner.Name(), b.String()),
	}
}

func crossExamAnalysisPrompt(model, moderator string, questioner, respondent Agent, qs []CrossExamQuestion, as []CrossExamAnswer) Prompt {
	return Prompt{
		Model:  model,
		System: moderator,
		User: fmt.Sprintf(`Analyze this cross-examination exchange.

Questioner: %s (%s)
Respondent: %s (%s)

Questions:
%s

Answers:
%s

Respond with a JSON object:
{
  "directness_score": 0-10,
  "concessions_made": ["..."],
  "counter_attacks": ["..."],
  "evasions": ["..."],
  "winner": "questioner | respondent | tie",
  "key_exchange": "the single most revealing moment"
}`, questioner.Name(), questioner.Side, respondent.Name(), respondent.Side, jsonBlock(qs), jsonBlock(as)),
	}
}

func lightningQuestionsPrompt(model, moderator, topic string, n int) Prompt {
	return Prompt{
		Model:  model,
		System: moderator,
		User: fmt.Sprintf(`Lightning round on %q. Write %d rapid-fire questions that both debaters must answer.

Each question must be under 15 words and force a position. No question may be answerable with "it depends".

Respond with a JSON object:
{"questions": [{"question": "...", "time_limit_seconds": 10, "forces_position": true}]}`, topic, n),
	}
}

func lightningAnswerPrompt(agent Agent, q LightningQuestion) Prompt {
	return Prompt{
		Model:  agent.Model,
		System: agent.SystemPrompt,
		User: fmt.Sprintf(`Lightning round. Answer in at most 10 words. No hedging.

Question: %s

Respond with a JSON object:
{"question": %q, "answer": "...", "word_count": 0, "concession_made": false}
Set concession_made to true if your answer gives ground to the other side.`, q.Question, q.Question),
	}
}

func closingPrompt(agent Agent, topic string) Prompt {
	return Prompt{
		Model:  agent.Model,
		System: agent.SystemPrompt,
		User: fmt.Sprintf(`The debate on %q is over. Give your closing line.

One sentence, at most 20 words. It should be the line people quote afterwards.

Respond with a JSON object:
{"statement": "...", "tone": "defiant | hopeful | urgent | reflective | triumphant"}`, topic),
	}
}

// transcript is the view of a debate handed to judges.
type transcript struct {
	Topic    string          `json:"topic"`
	Pro      transcriptAgent `json:"pro"`
	Con      transcriptAgent `json:"con"`
	Phases   Phases          `json:"phases"`
	Momentum MomentumState   `json:"momentum"`
}

type transcriptAgent struct {
	Name   string `json:"name"`
	Stance string `json:"stance"`
}

func judgePrompt(model, system string, d *Debate, pro, con Agent) Prompt {
	t := transcript{
		Topic:    d.Topic,
		Pro:      transcriptAgent{Name: pro.Name(), Stance: pro.Stance},
		Con:      transcriptAgent{Name: con.Name(), Stance: con.Stance},
		Phases:   d.Phases,
		Momentum: d.Momentum,
	}
	t.Phases.Verdict = nil
	return Prompt{
		Model:  model,
		System: system,
		User: fmt.Sprintf(`Here is the full debate on %q.
Pro: %s
Con: %s

%s

Score each side from 0 to 10:
- 9-10: exceptional, would win any room
- 7-8: strong with minor gaps
- 5-6: competent but forgettable
- 3-4: significant problems
- 0-2: failed to make a case

Respond with a JSON object:
{
  "scores": {"pro": 0, "con": 0},
  "commentary": {
    "overall": "...",
    "proAnalysis": {"strengths": ["..."], "weaknesses": ["..."], "standoutMoment": "...", "score_reasoning": "..."},
    "conAnalysis": {"strengths": ["..."], "weaknesses": ["..."], "standoutMoment": "...", "score_reasoning": "..."},
    "verdict": "one memorable sentence"
  }
}`, d.Topic, pro.Name(), con.Name(), jsonBlock(t)),
	}
}

func jsonBlock(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}
