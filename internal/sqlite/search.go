package sqlite

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/jmorrell/narthex/internal/domain/checkin"
)

// Search performs a prefix name search over active people, scoped to a
// campus. Kiosks use it to find a family while the queue is moving.
func (r *PersonRepository) Search(ctx context.Context, campusID, query string, limit int) ([]checkin.Person, error) {
	match := ftsPrefixQuery(query)
	if match == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = 25
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT p.id, p.campus_id, p.first_name, p.last_name, p.active
		FROM people_fts
		JOIN people p ON p.rowid = people_fts.rowid
		WHERE p.campus_id = ? AND p.active = 1 AND people_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, campusID, match, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search people: %w", err)
	}
	defer rows.Close()

	var results []checkin.Person
	for rows.Next() {
		var p checkin.Person
		if err := rows.Scan(&p.ID, &p.CampusID, &p.FirstName, &p.LastName, &p.Active); err != nil {
			return nil, fmt.Errorf("failed to scan person: %w", err)
		}
		results = append(results, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating people: %w", err)
	}

	return results, nil
}

// ftsPrefixQuery turns free-form kiosk input into an FTS5 match expression.
// Tokens are reduced to letters and digits and quoted so user input cannot
// inject query syntax, then marked as prefixes so partial names match while
// typing.
func ftsPrefixQuery(query string) string {
	var terms []string
	for _, tok := range strings.Fields(query) {
		tok = strings.Map(func(r rune) rune {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				return r
			}
			return -1
		}, tok)
		if tok == "" {
			continue
		}
		terms = append(terms, fmt.Sprintf(`"%s"*`, tok))
	}
	return strings.Join(terms, " ")
}
