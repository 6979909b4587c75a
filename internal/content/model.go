package content

import "time"

// Collection names in the remote store.
const (
	CollectionProjects = "projects"
	CollectionBriefs   = "briefs"
	CollectionReviews  = "reviews"
	CollectionSettings = "settings"

	SettingsSocialsDoc = "socials"
)

// Project is a portfolio entry. ID is assigned by the store on creation.
type Project struct {
	ID          string   `json:"-" firestore:"-"`
	Title       string   `json:"title" firestore:"title"`
	Category    string   `json:"category" firestore:"category"`
	Description string   `json:"description" firestore:"description"`
	Images      []string `json:"images" firestore:"images"`
	IsFeatured  bool     `json:"isFeatured" firestore:"isFeatured"`
	DateCreated int64    `json:"dateCreated" firestore:"dateCreated"`
}

// CoverImage returns the first image reference, or "" when there is none.
func (p Project) CoverImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

func (p Project) Created() time.Time { return time.UnixMilli(p.DateCreated) }

// Brief is a client intake record.
type Brief struct {
	ID            string   `json:"-" firestore:"-"`
	ClientName    string   `json:"clientName" firestore:"clientName"`
	CompanyName   string   `json:"companyName" firestore:"companyName"`
	Email         string   `json:"email" firestore:"email"`
	ProjectGoals  string   `json:"projectGoals" firestore:"projectGoals"`
	Deliverables  []string `json:"deliverables" firestore:"deliverables"`
	Budget        string   `json:"budget" firestore:"budget"`
	Timeline      string   `json:"timeline" firestore:"timeline"`
	DateSubmitted int64    `json:"dateSubmitted" firestore:"dateSubmitted"`
	Status        string   `json:"status" firestore:"status"`
}

func (b Brief) Submitted() time.Time { return time.UnixMilli(b.DateSubmitted) }

// Review is a client testimonial ("verdict").
type Review struct {
	ID         string `json:"-" firestore:"-"`
	ClientName string `json:"clientName" firestore:"clientName"`
	Content    string `json:"content" firestore:"content"`
	Rating     int    `json:"rating" firestore:"rating"`
	Date       int64  `json:"date" firestore:"date"`
	Status     string `json:"status" firestore:"status"`
}

// SocialLinks is the singleton settings/socials document.
type SocialLinks struct {
	Instagram string `json:"instagram" firestore:"instagram" yaml:"instagram"`
	Facebook  string `json:"facebook" firestore:"facebook" yaml:"facebook"`
	WhatsApp  string `json:"whatsapp" firestore:"whatsapp" yaml:"whatsapp"`
	Twitter   string `json:"twitter" firestore:"twitter" yaml:"twitter"`
	Pinterest string `json:"pinterest" firestore:"pinterest" yaml:"pinterest"`
	Behance   string `json:"behance" firestore:"behance" yaml:"behance"`
	LinkedIn  string `json:"linkedin" firestore:"linkedin" yaml:"linkedin"`
	Email     string `json:"email" firestore:"email" yaml:"email"`
}

// Channel is one populated social link, ready for display.
type Channel struct {
	Name string
	URL  string
}

// Channels returns the non-empty social channels in display order. Email
// is not a channel; it is shown on its own.
func (s SocialLinks) Channels() []Channel {
	all := []Channel{
		{"Instagram", s.Instagram},
		{"Facebook", s.Facebook},
		{"WhatsApp", s.WhatsApp},
		{"Twitter (X)", s.Twitter},
		{"Pinterest", s.Pinterest},
		{"Behance", s.Behance},
		{"LinkedIn", s.LinkedIn},
	}
	out := make([]Channel, 0, len(all))
	for _, c := range all {
		if c.URL != "" {
			out = append(out, c)
		}
	}
	return out
}

// User is the signed-in console user as reported by the auth provider.
type User struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
}

// AuthState is derived from auth provider notifications and never stored.
type AuthState struct {
	IsAuthenticated bool  `json:"isAuthenticated"`
	User            *User `json:"user"`
}

// Clone returns a copy whose slices do not alias p.
func (p Project) Clone() Project {
	p.Images = append([]string(nil), p.Images...)
	return p
}

func (b Brief) Clone() Brief {
	b.Deliverables = append([]string(nil), b.Deliverables...)
	return b
}
