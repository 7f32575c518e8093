package rules

import (
	"fmt"
	"path"
	"strings"

	"github.com/abdidvp/kraftgate/internal/domain"
	"github.com/fatih/camelcase"
)

var strategyByCategory = map[string]domain.QuickFixStrategy{
	"naming":         domain.FixRename,
	"convention":     domain.FixRename,
	"error_handling": domain.FixWrapInErrorHandler,
	"crypto":         domain.FixWrapInErrorHandler,
	"import":         domain.FixAddImport,
	"dependency":     domain.FixAddImport,
	"type_safety":    domain.FixAddTypeAnnotation,
	"documentation":  domain.FixAddDocumentation,
	"test_coverage":  domain.FixAddTest,
	"complexity":     domain.FixExtractFunction,
	"decomposition":  domain.FixExtractFunction,
	"security":       domain.FixUseParameterizedAccess,
	"taint":          domain.FixUseParameterizedAccess,
}

// StrategyFor returns the fix strategy for a category, if one exists.
func StrategyFor(category string) (domain.QuickFixStrategy, bool) {
	s, ok := strategyByCategory[strings.ToLower(category)]
	return s, ok
}

// QuickFix builds a fix for c in the given language. It returns nil when the
// category has no strategy.
func QuickFix(c Candidate, language string) *domain.QuickFix {
	strategy, ok := StrategyFor(c.Category)
	if !ok {
		return nil
	}
	lang := strings.ToLower(language)
	return &domain.QuickFix{
		Strategy:    strategy,
		Description: describe(strategy, c.PatternID, lang),
		Replacement: template(strategy, lang),
	}
}

func describe(s domain.QuickFixStrategy, patternID, lang string) string {
	switch s {
	case domain.FixRename:
		return fmt.Sprintf("Rename to match the %s convention", conventionWords(patternID))
	case domain.FixWrapInErrorHandler:
		switch lang {
		case "go":
			return "Add an if err != nil check and return the wrapped error"
		case "python":
			return "Wrap in a try/except block for proper error handling"
		case "rust":
			return "Match on the Result for proper error handling"
		case "ruby":
			return "Wrap in a begin/rescue block for proper error handling"
		default:
			return "Wrap in a try/catch block for proper error handling"
		}
	case domain.FixAddImport:
		return fmt.Sprintf("Add the missing import for pattern %q", patternID)
	case domain.FixAddTypeAnnotation:
		return "Add a type annotation"
	case domain.FixAddDocumentation:
		return "Add a documentation comment"
	case domain.FixAddTest:
		return fmt.Sprintf("Add test coverage for pattern %q", patternID)
	case domain.FixExtractFunction:
		return "Extract the complex logic into a separate function"
	case domain.FixUseParameterizedAccess:
		return "Use parameterized access instead of string-built queries"
	}
	return ""
}

// conventionWords turns "naming/camelCaseFunctions" into
// "camel case functions".
func conventionWords(patternID string) string {
	base := path.Base(patternID)
	base = strings.NewReplacer("-", " ", "_", " ").Replace(base)
	var words []string
	for _, field := range strings.Fields(base) {
		for _, w := range camelcase.Split(field) {
			words = append(words, strings.ToLower(w))
		}
	}
	if len(words) == 0 {
		return patternID
	}
	return strings.Join(words, " ")
}

// template returns replacement text for strategies that have one. Other
// strategies are free-text suggestions only.
func template(s domain.QuickFixStrategy, lang string) string {
	switch s {
	case domain.FixWrapInErrorHandler:
		switch lang {
		case "go":
			return "if err != nil {\n\treturn fmt.Errorf(\"operation failed: %w\", err)\n}"
		case "python":
			return "try:\n    # existing code\nexcept Exception as e:\n    raise"
		case "rust":
			return "match result {\n    Ok(value) => value,\n    Err(e) => return Err(e),\n}"
		case "java", "kotlin":
			return "try {\n    // existing code\n} catch (Exception e) {\n    throw new RuntimeException(e);\n}"
		case "ruby":
			return "begin\n  # existing code\nrescue StandardError => e\n  raise\nend"
		default:
			return "try {\n  // existing code\n} catch (error) {\n  // handle error\n}"
		}
	case domain.FixAddDocumentation:
		switch lang {
		case "go":
			return "// Name describes what this does.\n"
		case "python":
			return "\"\"\"Describe what this does.\"\"\"\n"
		case "rust":
			return "/// Describe what this does.\n"
		case "ruby":
			return "# Describe what this does.\n"
		default:
			return "/** Describe what this does. */\n"
		}
	case domain.FixAddTypeAnnotation:
		switch lang {
		case "go":
			return "any"
		case "python":
			return ": Any"
		case "java", "kotlin":
			return ": Object"
		case "rust":
			return ""
		default:
			return ": unknown"
		}
	case domain.FixUseParameterizedAccess:
		switch lang {
		case "go":
			return "db.QueryContext(ctx, \"SELECT * FROM t WHERE id = ?\", id)"
		case "python":
			return "cursor.execute(\"SELECT * FROM t WHERE id = %s\", (user_id,))"
		case "java":
			return "PreparedStatement ps = conn.prepareStatement(\"SELECT * FROM t WHERE id = ?\");\nps.setString(1, userId);"
		case "ruby":
			return "Model.where(\"id = ?\", user_id)"
		default:
			return "db.query(\"SELECT * FROM t WHERE id = ?\", [userId])"
		}
	}
	return ""
}
