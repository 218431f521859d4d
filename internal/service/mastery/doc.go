// Package mastery implements the path orchestrator: the state machine that
// drives a session from diagnostic through remediation and validation into
// graded practice.
//
// The orchestrator exclusively owns session transitions. Every transition is
// persisted before the response is sent, and every persisted transition is a
// compare-and-swap against the stage the request observed, so two concurrent
// submissions for the same session cannot both land. Energy is charged before
// each AI-backed call and refunded whenever the charged work is discarded,
// whether because generation failed or because the transition lost a race.
package mastery
