package domain

import "errors"

// ErrNoKnowledgeSelected is returned when an upload is attempted without a
// target knowledge base; no network activity is performed in that case.
var ErrNoKnowledgeSelected = errors.New("no knowledge base selected")
