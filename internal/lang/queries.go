package lang

import (
	"embed"
	"fmt"

	"github.com/parseltongue-dev/parseltongue/internal/entity"
)

// Each language's entity/dependency query is a versioned .scm file embedded at
// build time. Capture naming convention, shared by every query:
//
//	@definition.<kind>  the full declaration node for an entity of <kind>
//	@name               the entity's name, captured alongside a definition
//	@reference.<edge>   an identifier referenced by the enclosing entity,
//	                    where <edge> is call, use, extends, or implements
//
// The extractor is driven entirely by these names; extraction logic never
// changes when a query does.
//
//go:embed queries/*.scm
var queryFS embed.FS

// querySource returns the raw declarative query for a language.
func querySource(lang entity.Language) ([]byte, error) {
	data, err := queryFS.ReadFile(fmt.Sprintf("queries/%s.scm", lang))
	if err != nil {
		return nil, fmt.Errorf("no query definition for %s: %w", lang, err)
	}
	return data, nil
}
