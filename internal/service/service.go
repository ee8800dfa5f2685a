// Package service implements the application services on top of the store,
// the LLM router and the policy engine.
package service

import (
	"github.com/liuq93/gochat/internal/adapter/llm"
	"github.com/liuq93/gochat/internal/auth"
	"github.com/liuq93/gochat/internal/config"
	"github.com/liuq93/gochat/internal/repository"
	"github.com/liuq93/gochat/policy"
)

type Service struct {
	store        repository.Store
	router       *llm.Router
	tokens       *auth.TokenIssuer
	config       *config.Config
	policyEngine *policy.Engine
}

func New(store repository.Store, router *llm.Router, tokens *auth.TokenIssuer, cfg *config.Config, policyEngine *policy.Engine) *Service {
	return &Service{
		store:        store,
		router:       router,
		tokens:       tokens,
		config:       cfg,
		policyEngine: policyEngine,
	}
}
