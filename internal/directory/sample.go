package directory

import "github.com/jwalitptl/ayusutra-api/internal/model"

// SampleDoctors is the built-in directory used when no seed file is configured.
func SampleDoctors() []model.Doctor {
	return []model.Doctor{
		{
			ID:            "1",
			Name:          "Dr. Aditi Sharma",
			Specialty:     "Cardiologist",
			Experience:    "12 years",
			Hospital:      "Apollo Hospital",
			Distance:      2.3,
			Rating:        4.8,
			NextSlot:      "Today, 5:30 PM",
			ImageURL:      "https://images.unsplash.com/photo-1559839734-2b71ea197ec2?w=150&h=150&fit=crop&crop=face",
			ContactNumber: "+91-9876543210",
			Email:         "aditi.sharma@apollo.com",
		},
		{
			ID:            "2",
			Name:          "Dr. Rajesh Kumar",
			Specialty:     "Dermatologist",
			Experience:    "8 years",
			Hospital:      "Fortis Clinic",
			Distance:      4.1,
			Rating:        4.6,
			NextSlot:      "Tomorrow, 10:00 AM",
			ImageURL:      "https://images.unsplash.com/photo-1612349317150-e413f6a5b16d?w=150&h=150&fit=crop&crop=face",
			ContactNumber: "+91-9876543211",
			Email:         "rajesh.kumar@fortis.com",
		},
		{
			ID:            "3",
			Name:          "Dr. Meera Iyer",
			Specialty:     "Pediatrician",
			Experience:    "10 years",
			Hospital:      "Max Healthcare",
			Distance:      3.5,
			Rating:        4.9,
			NextSlot:      "Today, 3:00 PM",
			ImageURL:      "https://images.unsplash.com/photo-1594824720853-e8beff82c2ab?w=150&h=150&fit=crop&crop=face",
			ContactNumber: "+91-9876543212",
			Email:         "meera.iyer@max.com",
		},
		{
			ID:            "4",
			Name:          "Dr. Ananya Gupta",
			Specialty:     "Panchkarma",
			Experience:    "15 years",
			Hospital:      "Ayusutra Clinic",
			Distance:      1.8,
			Rating:        4.7,
			NextSlot:      "Today, 2:00 PM",
			ImageURL:      "https://images.unsplash.com/photo-1582750433449-648ed127bb54?w=150&h=150&fit=crop&crop=face",
			ContactNumber: "+91-9876543213",
			Email:         "ananya.gupta@ayusutra.com",
		},
		{
			ID:            "5",
			Name:          "Dr. Vikram Singh",
			Specialty:     "Orthopedic",
			Experience:    "9 years",
			Hospital:      "AIIMS Delhi",
			Distance:      5.2,
			Rating:        4.5,
			NextSlot:      "Tomorrow, 11:30 AM",
			ImageURL:      "https://images.unsplash.com/photo-1612349317150-e413f6a5b16d?w=150&h=150&fit=crop&crop=face",
			ContactNumber: "+91-9876543214",
			Email:         "vikram.singh@aiims.com",
		},
		{
			ID:            "6",
			Name:          "Dr. Priya Reddy",
			Specialty:     "Gynecologist",
			Experience:    "11 years",
			Hospital:      "Fortis Hospital",
			Distance:      3.7,
			Rating:        4.8,
			NextSlot:      "Today, 4:15 PM",
			ImageURL:      "https://images.unsplash.com/photo-1594824723059-c45dfb53cd67?w=150&h=150&fit=crop&crop=face",
			ContactNumber: "+91-9876543215",
			Email:         "priya.reddy@fortis.com",
		},
	}
}
