package content

import "strings"

const FeaturedLimit = 3

// Featured returns at most FeaturedLimit featured projects, keeping the
// order of the input snapshot.
func Featured(projects []Project) []Project {
	out := make([]Project, 0, FeaturedLimit)
	for _, p := range projects {
		if !p.IsFeatured {
			continue
		}
		out = append(out, p)
		if len(out) == FeaturedLimit {
			break
		}
	}
	return out
}

// Approved returns the reviews visible on the public reviews page.
func Approved(reviews []Review) []Review {
	out := make([]Review, 0, len(reviews))
	for _, r := range reviews {
		if r.Status == ReviewApproved {
			out = append(out, r)
		}
	}
	return out
}

const AllCategories = "All"

// ArchiveCategories returns "All" followed by each distinct category in
// order of first appearance.
func ArchiveCategories(projects []Project) []string {
	seen := make(map[string]bool, len(projects))
	out := []string{AllCategories}
	for _, p := range projects {
		if seen[p.Category] {
			continue
		}
		seen[p.Category] = true
		out = append(out, p.Category)
	}
	return out
}

// FilterArchive applies the archive category filter and the
// case-insensitive title/description search.
func FilterArchive(projects []Project, category, search string) []Project {
	if category == "" {
		category = AllCategories
	}
	needle := strings.ToLower(strings.TrimSpace(search))

	out := make([]Project, 0, len(projects))
	for _, p := range projects {
		if category != AllCategories && p.Category != category {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(p.Title), needle) &&
			!strings.Contains(strings.ToLower(p.Description), needle) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func FindProject(projects []Project, id string) (Project, bool) {
	for _, p := range projects {
		if p.ID == id {
			return p, true
		}
	}
	return Project{}, false
}

func FindBrief(briefs []Brief, id string) (Brief, bool) {
	for _, b := range briefs {
		if b.ID == id {
			return b, true
		}
	}
	return Brief{}, false
}

func FindReview(reviews []Review, id string) (Review, bool) {
	for _, r := range reviews {
		if r.ID == id {
			return r, true
		}
	}
	return Review{}, false
}
