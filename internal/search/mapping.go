package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/custom"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	"github.com/blevesearch/bleve/v2/analysis/tokenizer/single"
	"github.com/blevesearch/bleve/v2/mapping"
)

// wholeLowerAnalyzer keeps a field value as one lowercased term so a
// regexp query can match any substring of it.
const wholeLowerAnalyzer = "whole_lower"

// buildIndexMapping creates the Bleve mapping for bookmark documents.
func buildIndexMapping() (mapping.IndexMapping, error) {
	indexMapping := bleve.NewIndexMapping()

	err := indexMapping.AddCustomAnalyzer(wholeLowerAnalyzer, map[string]any{
		"type":          custom.Name,
		"tokenizer":     single.Name,
		"token_filters": []string{lowercase.Name},
	})
	if err != nil {
		return nil, err
	}
	indexMapping.DefaultAnalyzer = wholeLowerAnalyzer

	docMapping := bleve.NewDocumentMapping()

	for _, field := range searchableFields {
		fm := bleve.NewTextFieldMapping()
		fm.Analyzer = wholeLowerAnalyzer
		fm.Store = false
		fm.IncludeInAll = false
		docMapping.AddFieldMappingsAt(field, fm)
	}

	// Owner filter, exact match only.
	userFieldMapping := bleve.NewTextFieldMapping()
	userFieldMapping.Analyzer = keyword.Name
	userFieldMapping.IncludeInAll = false
	docMapping.AddFieldMappingsAt(fieldUserID, userFieldMapping)

	createdAtFieldMapping := bleve.NewNumericFieldMapping()
	createdAtFieldMapping.Store = true
	docMapping.AddFieldMappingsAt(fieldCreatedAt, createdAtFieldMapping)

	indexMapping.AddDocumentMapping("_default", docMapping)
	indexMapping.DefaultMapping = docMapping

	return indexMapping, nil
}
