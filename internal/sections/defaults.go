// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package sections

import "errors"

// DefaultHome is what the homepage shows for any section that has not been
// configured yet.
func DefaultHome(siteName string) HomeDefaults {
	if siteName == "" {
		siteName = "Pondok Pesantren"
	}
	return HomeDefaults{
		Hero: Default[Hero]{
			Title:    "Selamat Datang di " + siteName,
			Subtitle: "Pendidikan Islam terpadu untuk generasi Qur'ani",
			Content: Hero{
				Badge:        "Penerimaan Santri Baru",
				CTAPrimary:   &Link{Label: "Daftar Sekarang", Href: "/pendaftaran"},
				CTASecondary: &Link{Label: "Profil", Href: "/profil"},
			},
		},
		Stats: Default[Stats]{
			Title: "Pesantren dalam Angka",
			Content: Stats{Items: []Stat{
				{Value: "500+", Label: "Santri", Icon: "users"},
				{Value: "50+", Label: "Asatidz", Icon: "graduation-cap"},
				{Value: "10+", Label: "Program", Icon: "book-open"},
			}},
		},
		Programs: Default[Programs]{
			Title:   "Program Pendidikan",
			Content: Programs{Items: []Program{{Name: "Tahfidzul Qur'an"}, {Name: "Madrasah Diniyah"}}},
		},
		Features: Default[Features]{
			Title:   "Mengapa Memilih Kami",
			Content: Features{Items: []Feature{{Title: "Lingkungan Islami"}, {Title: "Asatidz Berpengalaman"}}},
		},
		Testimonials: Default[Testimonials]{
			Title:   "Kata Mereka",
			Content: Testimonials{},
		},
		CTA: Default[CTA]{
			Title:    "Bergabung Bersama Kami",
			Subtitle: "Pendaftaran santri baru telah dibuka",
			Content:  CTA{ButtonText: "Daftar Sekarang", ButtonURL: "/pendaftaran"},
		},
		Contact: Default[Contact]{
			Title: "Hubungi Kami",
		},
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrSectionNotFound)
}
