package entity

// Recipient is one receiver of a kudos event.
type Recipient struct {
	ID   string
	Name string
}

// KudosContext is the joined view of a kudos event needed for rendering:
// who gave it, the category, the optional message and GIF, and everyone who
// received it. It is loaded only when a notification references a kudos id.
type KudosContext struct {
	ID           string
	GiverID      string
	GiverName    string
	CategoryName string
	Message      *string
	GifURL       *string
	Recipients   []Recipient
}

// RecipientNames returns the recipient display names in stored order.
func (k *KudosContext) RecipientNames() []string {
	names := make([]string, 0, len(k.Recipients))
	for _, r := range k.Recipients {
		names = append(names, r.Name)
	}
	return names
}
