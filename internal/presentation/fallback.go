package presentation

import (
	"fmt"

	"github.com/khoahotran/summit-cms/internal/domain/media"
)

var galleryHeights = []int{400, 500, 350, 450, 380, 420, 480}

type speaker struct {
	name, role, stat, image string
}

var pastSpeakers = []speaker{
	{"Dr. Chackochan Mathai", "Founder & CEO – Franchising Rightway", "Impact: ₹30–40 Crores", "https://images.pexels.com/photos/2182970/pexels-photo-2182970.jpeg"},
	{"Mr. Balaji Venkatrathinam", "Founder & ED – Solidpro Group", "Turnover: ₹50+ Crores", "https://images.pexels.com/photos/2379004/pexels-photo-2379004.jpeg"},
	{"Mr. Sriram Manoharan", "Founder & CEO – Contus Tech", "Revenue: ₹150–200 Crores", "https://images.pexels.com/photos/220453/pexels-photo-220453.jpeg"},
	{"Ms. Aparna Thyagarajan", "Co-Founder – Shobitam Inc", "D2C Online Fashion Specialist", "https://images.pexels.com/photos/3775168/pexels-photo-3775168.jpeg"},
	{"Mr. Kavin Kumar Kandasamy", "CEO – ProClime", "Revenue: ₹200+ Crores", "https://images.pexels.com/photos/3772506/pexels-photo-3772506.jpeg"},
	{"Mr. G. Muralidharan", "Managing Director – KAG India", "Revenue: ₹650+ Crores", "https://images.pexels.com/photos/1181686/pexels-photo-1181686.jpeg"},
	{"Mr. Avinaash Diraviyam", "Manager – UN World Food Programme", "International Project Expert", "https://images.pexels.com/photos/3184291/pexels-photo-3184291.jpeg"},
	{"Mr. Srinivasa Bharathy", "MD & CEO – Adrenalin eSystems", "HR Technology Leader", "https://images.pexels.com/photos/3183197/pexels-photo-3183197.jpeg"},
	{"Mr. Subburaj Thangappalam", "Project Manager – L&T Tech", "Agile Excellence Lead", "https://images.pexels.com/photos/3184433/pexels-photo-3184433.jpeg"},
	{"Mr. Adhitya Rajasekaran", "Founder – Auxos Global", "Singapore Technopreneur", "https://images.pexels.com/photos/3184292/pexels-photo-3184292.jpeg"},
}

func gridImage(n int) string {
	return fmt.Sprintf("/images/summit-grid-%d.png", n)
}

// Fallback returns the static entries shown when a collection is empty or unreachable. Unknown
// collections have none. A fresh slice is returned on every call.
func Fallback(collection string, c Constraints) []ViewEntry {
	switch collection {
	case media.CollectionGallery:
		out := make([]ViewEntry, len(galleryHeights))
		for i, h := range galleryHeights {
			out[i] = ViewEntry{ID: fmt.Sprintf("summit-%d", i+1), Img: gridImage(i + 1), URL: "#", Height: h}
		}
		return out
	case media.CollectionCarousel:
		out := make([]ViewEntry, len(galleryHeights))
		for i := range galleryHeights {
			out[i] = ViewEntry{ID: fmt.Sprintf("summit-grid-%d", i+1), Img: gridImage(i + 1), URL: "#", Height: c.DisplayHeight(0, 0)}
		}
		return out
	case media.CollectionSpeakers:
		out := make([]ViewEntry, len(pastSpeakers))
		for i, s := range pastSpeakers {
			out[i] = ViewEntry{
				ID:     fmt.Sprintf("speaker-%d", i+1),
				Img:    s.image,
				URL:    "#",
				Height: c.DisplayHeight(0, 0),
				Metadata: map[string]any{
					"name": s.name,
					"role": s.role,
					"stat": s.stat,
				},
			}
		}
		return out
	}
	return nil
}
