package search

// synonymGroups lists words that mean the same thing to a shopper. Every
// member of a group expands to every other member.
var synonymGroups = [][]string{
	{"paisa", "money", "cash", "wallet", "purse", "gift card"},
	{"gift", "present", "tohfa", "uphaar"},
	{"flowers", "flower", "phool", "bouquet", "roses", "rose"},
	{"sweets", "sweet", "mithai"},
	{"chocolate", "chocolates", "choco"},
	{"cake", "cakes"},
	{"mom", "mother", "maa", "mummy"},
	{"dad", "father", "papa"},
	{"wife", "girlfriend", "gf"},
	{"husband", "boyfriend", "bf"},
	{"brother", "bhai", "bhaiya"},
	{"sister", "behen", "didi"},
	{"watch", "ghadi"},
	{"diya", "diyas", "lamp"},
	{"frame", "photo frame"},
	{"mug", "cup"},
	{"hamper", "basket", "combo"},
	{"personalised", "personalized", "customised", "customized", "custom"},
	{"birthday", "bday", "janamdin"},
	{"anniversary", "saalgirah"},
	{"rakhi", "raksha bandhan", "rakshabandhan"},
	{"jewellery", "jewelry", "gehne"},
	{"teddy", "teddy bear", "soft toy"},
}

var synonyms = buildSynonyms(synonymGroups)

func buildSynonyms(groups [][]string) map[string][]string {
	m := make(map[string][]string)
	for _, group := range groups {
		for _, term := range group {
			for _, other := range group {
				if other != term {
					m[term] = append(m[term], other)
				}
			}
		}
	}
	return m
}

// Synonyms returns the words that expand from term.
func Synonyms(term string) []string {
	return synonyms[normalize(term)]
}
