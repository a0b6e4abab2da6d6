package search

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// Terms splits a free-text query into lowercase whitespace tokens.
func Terms(q string) []string {
	return strings.Fields(strings.ToLower(q))
}

// Search returns the ids of userID's bookmarks where any term of q is a
// substring of the title, url, notes or any tag name. Ids come back newest
// first. A query without terms matches every bookmark of the user.
func (s *SearchIndex) Search(ctx context.Context, userID, q string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total, err := s.index.DocCount()
	if err != nil {
		return nil, fmt.Errorf("count documents: %w", err)
	}
	if total == 0 {
		return []string{}, nil
	}

	req := bleve.NewSearchRequestOptions(buildSearchQuery(userID, Terms(q)), int(total), 0, false)
	req.SortBy([]string{"-" + fieldCreatedAt, "_id"})

	result, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	ids := make([]string, 0, len(result.Hits))
	for _, hit := range result.Hits {
		ids = append(ids, hit.ID)
	}
	return ids, nil
}

// buildSearchQuery scopes an any-term, any-field substring match to one user.
func buildSearchQuery(userID string, terms []string) query.Query {
	owner := bleve.NewTermQuery(userID)
	owner.SetField(fieldUserID)

	if len(terms) == 0 {
		return owner
	}

	textQueries := make([]query.Query, 0, len(terms)*len(searchableFields))
	for _, term := range terms {
		pattern := "(?s).*" + regexp.QuoteMeta(term) + ".*"
		for _, field := range searchableFields {
			rq := bleve.NewRegexpQuery(pattern)
			rq.SetField(field)
			textQueries = append(textQueries, rq)
		}
	}

	return bleve.NewConjunctionQuery(owner, bleve.NewDisjunctionQuery(textQueries...))
}
