package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloudwego/eino/schema"

	"github.com/fredgpt/server/internal/agent/model"
	"github.com/fredgpt/server/internal/search"
)

// documentsShown caps how many retrieved documents are echoed back to the model.
const documentsShown = 3

func (a *Adapters) HybridSearch(ctx context.Context, query string) Result {
	if a.Search == nil {
		return Result{Message: search.ErrNotConfigured.Error(), Error: search.ErrNotConfigured.Error()}
	}
	results, err := a.Search.Search(ctx, query)
	if errors.Is(err, search.ErrNotConfigured) {
		return Result{Message: err.Error(), Error: err.Error()}
	}
	if err != nil {
		return failed(fmt.Sprintf("Hybrid search failed: %v", err), err)
	}
	if results == nil {
		results = []search.Result{}
	}
	return Result{
		Message: fmt.Sprintf("Hybrid search returned %d result(s).", len(results)),
		Payload: map[string]any{"results": results},
	}
}

func (a *Adapters) RetrieveDocuments(ctx context.Context, query string) Result {
	if a.Retriever == nil {
		return failed(fmt.Sprintf("Document retrieval failed: %v", errRetrievalDisabled), errRetrievalDisabled)
	}
	hits, err := a.Retriever.Retrieve(ctx, query)
	if err != nil {
		return failed(fmt.Sprintf("Document retrieval failed: %v", err), err)
	}

	docs := make([]model.Document, 0, len(hits))
	for _, h := range hits {
		if h == nil {
			continue
		}
		docs = append(docs, fromSchema(h))
	}

	res := Result{
		Docs:    docs,
		Queries: []string{query},
		Source:  map[string]any{"query": query, "documents": len(docs)},
	}
	if len(docs) == 0 {
		res.Message = "No documents were retrieved."
		return res
	}
	shown := docs[:min(len(docs), documentsShown)]
	res.Message = fmt.Sprintf("Retrieved %d document(s).\n%s", len(docs), model.FormatDocuments(shown))
	return res
}

func fromSchema(d *schema.Document) model.Document {
	return model.Document{
		ID:       d.ID,
		Content:  d.Content,
		Score:    d.Score(),
		Metadata: d.MetaData,
	}
}
