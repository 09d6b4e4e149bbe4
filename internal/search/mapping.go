package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"
)

// buildIndexMapping creates the Bleve index mapping for note documents.
//
// Card text fields use the English analyzer so "dunes" finds "dune". Tags use
// the keyword analyzer so compound tags like "sci-fi" stay intact.
func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = en.AnalyzerName

	docMapping := bleve.NewDocumentMapping()

	// Book title, stored for display in results.
	bookFieldMapping := bleve.NewTextFieldMapping()
	bookFieldMapping.Analyzer = en.AnalyzerName
	bookFieldMapping.Store = true
	bookFieldMapping.IncludeTermVectors = true // For highlighting
	docMapping.AddFieldMappingsAt("book", bookFieldMapping)

	frontFieldMapping := bleve.NewTextFieldMapping()
	frontFieldMapping.Analyzer = en.AnalyzerName
	frontFieldMapping.Store = true
	frontFieldMapping.IncludeTermVectors = true
	docMapping.AddFieldMappingsAt("front", frontFieldMapping)

	// Back text is searchable but not stored; results show the front.
	backFieldMapping := bleve.NewTextFieldMapping()
	backFieldMapping.Analyzer = en.AnalyzerName
	backFieldMapping.Store = false
	backFieldMapping.IncludeTermVectors = true
	docMapping.AddFieldMappingsAt("back", backFieldMapping)

	tagsFieldMapping := bleve.NewTextFieldMapping()
	tagsFieldMapping.Analyzer = keyword.Name
	tagsFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("tags", tagsFieldMapping)

	difficultyFieldMapping := bleve.NewTextFieldMapping()
	difficultyFieldMapping.Analyzer = keyword.Name
	docMapping.AddFieldMappingsAt("difficulty", difficultyFieldMapping)

	indexMapping.AddDocumentMapping("_default", docMapping)

	return indexMapping
}
