package handler

import "github.com/google/wire"

// ProviderSet Handler ProviderSet
var ProviderSet = wire.NewSet(
	NewTodoHandler,
	NewListHandler,
	NewAIHandler,
	NewUserHandler,
	NewImageHandler,
	NewWSHandler,
)
