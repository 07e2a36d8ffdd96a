package search

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/retriever"
	"github.com/cloudwego/eino/schema"
)

// DefaultTopK is the number of documents kept per retrieval.
const DefaultTopK = 5

var contentKeys = []string{"content", "text", "chunk", "page_content", "snippet"}

// Retriever adapts the hybrid index to eino's retriever component.
type Retriever struct {
	client *Client
	topK   int
}

var _ retriever.Retriever = (*Retriever)(nil)

func NewRetriever(client *Client, topK int) *Retriever {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Retriever{client: client, topK: topK}
}

func (r *Retriever) Retrieve(ctx context.Context, query string, opts ...retriever.Option) ([]*schema.Document, error) {
	options := retriever.GetCommonOptions(&retriever.Options{TopK: &r.topK}, opts...)

	results, err := r.client.Search(ctx, query)
	if err != nil {
		return nil, err
	}

	docs := make([]*schema.Document, 0, len(results))
	for i, res := range results {
		if options.TopK != nil && len(docs) >= *options.TopK {
			break
		}
		docs = append(docs, toDocument(i, res))
	}
	return docs, nil
}

func toDocument(i int, res Result) *schema.Document {
	doc := &schema.Document{MetaData: map[string]any{}}
	for k, v := range res {
		doc.MetaData[k] = v
	}

	if id, ok := res["id"]; ok {
		doc.ID = fmt.Sprint(id)
		delete(doc.MetaData, "id")
	} else {
		doc.ID = fmt.Sprintf("hit-%d", i)
	}
	for _, k := range contentKeys {
		if s, ok := res[k].(string); ok && s != "" {
			doc.Content = s
			delete(doc.MetaData, k)
			break
		}
	}
	if score, ok := res["score"].(float64); ok {
		delete(doc.MetaData, "score")
		doc = doc.WithScore(score)
	}
	return doc
}
