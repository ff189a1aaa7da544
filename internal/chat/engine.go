// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package chat routes natural-language analytics questions to intent
// handlers. Handlers are consulted in registration order and the first
// whose pattern matches wins; everything else lands on the general
// fallback. Handlers render markdown, and some responses carry a second
// message holding an action token the caller can send back to trigger a
// follow-up workflow step.
// See docs/ARCHITECTURE § Chat Dispatcher.
package chat

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/insight-engine/internal/reconcile"
	"github.com/pdiddy/insight-engine/pkg/types"
)

// Response is one chat reply: a primary message, optionally followed by
// further messages. Multi-part responses are used when the reply ends
// with an actionable control token that must stay parseable on its own.
type Response struct {
	messages []string
}

// Text builds a single-message response.
func Text(msg string) Response {
	return Response{messages: []string{msg}}
}

// Multi builds a multi-message response.
func Multi(msgs ...string) Response {
	return Response{messages: msgs}
}

// Messages returns the ordered reply messages.
func (r Response) Messages() []string {
	return r.messages
}

// Params carries the values a handler's pattern extracted from the
// message. Each handler reads only the fields its Match populated.
type Params struct {
	// Limit bounds ranking queries.
	Limit int
	// Name is an extracted organization or author name.
	Name string
	// Action selects a reconciliation workflow step.
	Action reconcile.Action
	// Outcome is a normalized outcome identifier.
	Outcome string
	// Message is the raw text, kept for the fallback handler.
	Message string
}

// Handler is one intent: a pattern matcher plus the logic that answers
// matching messages.
type Handler interface {
	// Match reports whether the handler wants the message and returns
	// the parameters it extracted.
	Match(message string) (Params, bool)
	// Handle answers a matched message.
	Handle(ctx context.Context, p Params) (Response, error)
}

// Engine dispatches messages across an ordered handler chain.
type Engine struct {
	handlers []Handler
	fallback Handler
	log      *zap.SugaredLogger
}

// Deps bundles what the default handler chain needs.
type Deps struct {
	Orgs      OrgReader
	Resolver  AddressResolver
	Websites  WebsiteSearcher
	Papers    *reconcile.Reconciler
	Templates TemplateReader
	Cohort    CohortReader
	Docs      DocQuerier
	Config    types.ChatConfig
	Log       *zap.SugaredLogger
}

// New builds an engine with the standard handler chain. Order matters:
// more specific intents sit before broader ones, and the simulation
// handler must precede the templates handler.
func New(d Deps) *Engine {
	e := &Engine{
		fallback: &generalHandler{},
		log:      d.Log,
	}
	e.Register(&topOrgsHandler{orgs: d.Orgs, cfg: d.Config})
	e.Register(&addressHandler{resolver: d.Resolver, websites: d.Websites, log: d.Log})
	e.Register(&papersHandler{papers: d.Papers})
	if d.Docs != nil {
		e.Register(&docQAHandler{docs: d.Docs})
	}
	e.Register(&simulationHandler{templates: d.Templates, cohort: d.Cohort})
	e.Register(&templatesHandler{templates: d.Templates})
	e.Register(&outcomesHandler{cohort: d.Cohort})
	e.Register(&statsHandler{cohort: d.Cohort})
	return e
}

// Register appends a handler to the chain. Later registrations only see
// messages no earlier handler claimed.
func (e *Engine) Register(h Handler) {
	e.handlers = append(e.handlers, h)
}

// ProcessMessage routes one message and returns the rendered reply.
func (e *Engine) ProcessMessage(ctx context.Context, message string) (Response, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return Response{}, fmt.Errorf("empty message")
	}

	for _, h := range e.handlers {
		params, ok := h.Match(message)
		if !ok {
			continue
		}
		e.log.Debugw("message matched", "handler", fmt.Sprintf("%T", h))
		resp, err := h.Handle(ctx, params)
		if err != nil {
			return Response{}, fmt.Errorf("handling message: %w", err)
		}
		return resp, nil
	}

	return e.fallback.Handle(ctx, Params{Message: message})
}
