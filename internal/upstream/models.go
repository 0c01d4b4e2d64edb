package upstream

// Location is one seat record from the paginated inventory listing. Host is
// the opaque seat token ("z1r2p3"); it is empty for records that are not
// bound to a physical seat. User is set only on the active-occupants variant.
type Location struct {
	ID   int64         `json:"id"`
	Host string        `json:"host"`
	User *LocationUser `json:"user,omitempty"`
}

// LocationUser is the minimal occupant identity embedded in a location record.
type LocationUser struct {
	ID    int    `json:"id"`
	Login string `json:"login"`
}

// User is the provider's user shape, reduced to the fields the map needs.
// The trailing "?" in some JSON names is the provider's own convention.
type User struct {
	ID          int          `json:"id"`
	Login       string       `json:"login"`
	Displayname string       `json:"displayname"`
	PoolYear    string       `json:"pool_year"`
	Kind        string       `json:"kind"`
	Staff       bool         `json:"staff?"`
	Alumni      bool         `json:"alumni?"`
	Image       Image        `json:"image"`
	CursusUsers []CursusUser `json:"cursus_users"`
}

type Image struct {
	Link     string        `json:"link"`
	Versions ImageVersions `json:"versions"`
}

type ImageVersions struct {
	Large  string `json:"large"`
	Medium string `json:"medium"`
	Small  string `json:"small"`
	Micro  string `json:"micro"`
}

type CursusUser struct {
	Level    *float64 `json:"level"`
	CursusID int      `json:"cursus_id"`
	Cursus   Cursus   `json:"cursus"`
}

type Cursus struct {
	ID   int    `json:"id"`
	Slug string `json:"slug"`
}

// Token is the provider's OAuth token response.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

const primaryCursusID = 21

// Avatar picks the best available medium-size avatar reference.
func (u *User) Avatar() string {
	v := u.Image.Versions
	for _, s := range []string{v.Medium, v.Large, v.Small, v.Micro, u.Image.Link} {
		if s != "" {
			return s
		}
	}
	return ""
}

// AvatarLarge picks the best available large avatar reference.
func (u *User) AvatarLarge() string {
	v := u.Image.Versions
	for _, s := range []string{v.Large, v.Medium, u.Image.Link} {
		if s != "" {
			return s
		}
	}
	return ""
}

// PrimaryLevel returns the user's level on the primary track, or nil when
// the provider reports none.
func (u *User) PrimaryLevel() *float64 {
	var fallback *float64
	for i := range u.CursusUsers {
		cu := &u.CursusUsers[i]
		if cu.Cursus.Slug == "42cursus" || cu.CursusID == primaryCursusID || cu.Cursus.ID == primaryCursusID {
			if cu.Level != nil {
				return cu.Level
			}
		}
		if fallback == nil && cu.Level != nil {
			fallback = cu.Level
		}
	}
	return fallback
}
