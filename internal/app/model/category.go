package model

// AvailableCategories is the fixed vocabulary a listing may be filed under.
// A tag carries at most MaxCategoriesPerTag of these.
var AvailableCategories = []string{
	"Art",
	"Big Community",
	"Business",
	"Coding",
	"Design",
	"Education",
	"Entertainment",
	"Fashion",
	"Fiction",
	"Food",
	"Fun",
	"Fun or Comedy",
	"Gaming",
	"Health",
	"Large Community",
	"Memes",
	"Music",
	"NSFW",
	"Other",
	"Politics",
	"Racing",
	"Religion",
	"Roleplay",
	"Science",
	"Small Community",
	"Social",
	"Sports",
	"Technology",
	"Travel",
}

const MaxCategoriesPerTag = 3

var categorySet = func() map[string]struct{} {
	set := make(map[string]struct{}, len(AvailableCategories))
	for _, c := range AvailableCategories {
		set[c] = struct{}{}
	}
	return set
}()

// IsValidCategory reports whether a value belongs to the vocabulary.
func IsValidCategory(category string) bool {
	_, ok := categorySet[category]
	return ok
}
