package domain

import (
	"sort"
	"time"

	scheduling "github.com/felixgeelhaar/meditrack/internal/scheduling/domain"
	"github.com/google/uuid"
)

// TopDoctorsLimit caps the workload ranking.
const TopDoctorsLimit = 5

// DoctorWorkload is one entry of the workload ranking.
type DoctorWorkload struct {
	DoctorID     uuid.UUID `json:"doctor_id"`
	Appointments int       `json:"appointments"`
}

// Patterns summarizes a set of appointments. Rates are percentages.
type Patterns struct {
	Total            int                       `json:"total_appointments"`
	ByWeekday        map[time.Weekday]int      `json:"days_of_week_distribution"`
	ByHour           map[int]int               `json:"hours_of_day_distribution"`
	ByStatus         map[scheduling.Status]int `json:"status_distribution"`
	TopDoctors       []DoctorWorkload          `json:"top_doctors_by_workload"`
	CancellationRate float64                   `json:"cancellation_rate"`
	NoShowRate       float64                   `json:"no_show_rate"`
}

// Hours returns the hours that have at least one appointment, ascending.
func (p Patterns) Hours() []int {
	hours := make([]int, 0, len(p.ByHour))
	for h := range p.ByHour {
		hours = append(hours, h)
	}
	sort.Ints(hours)
	return hours
}

// AnalyzePatterns counts appointments by weekday, hour, status and doctor.
// Weekdays and hours are read in loc; nil means UTC. Cancelled appointments
// are included: they drive the cancellation rate. ByWeekday always carries
// all seven days.
func AnalyzePatterns(occupancies []scheduling.Occupancy, loc *time.Location) Patterns {
	if loc == nil {
		loc = time.UTC
	}
	p := Patterns{
		Total:     len(occupancies),
		ByWeekday: make(map[time.Weekday]int, len(Weekdays)),
		ByHour:    make(map[int]int),
		ByStatus:  make(map[scheduling.Status]int),
	}
	for _, d := range Weekdays {
		p.ByWeekday[d] = 0
	}

	perDoctor := make(map[uuid.UUID]int)
	var doctorOrder []uuid.UUID
	cancelled, noShow := 0, 0

	for _, o := range occupancies {
		start := o.Start.In(loc)
		p.ByWeekday[start.Weekday()]++
		p.ByHour[start.Hour()]++
		p.ByStatus[o.Status]++

		if o.DoctorID != uuid.Nil {
			if _, seen := perDoctor[o.DoctorID]; !seen {
				doctorOrder = append(doctorOrder, o.DoctorID)
			}
			perDoctor[o.DoctorID]++
		}

		switch o.Status {
		case scheduling.StatusCancelled:
			cancelled++
		case scheduling.StatusNoShow:
			noShow++
		}
	}

	if p.Total > 0 {
		p.CancellationRate = float64(cancelled) / float64(p.Total) * 100
		p.NoShowRate = float64(noShow) / float64(p.Total) * 100
	}

	sort.SliceStable(doctorOrder, func(i, j int) bool {
		return perDoctor[doctorOrder[i]] > perDoctor[doctorOrder[j]]
	})
	if len(doctorOrder) > TopDoctorsLimit {
		doctorOrder = doctorOrder[:TopDoctorsLimit]
	}
	for _, id := range doctorOrder {
		p.TopDoctors = append(p.TopDoctors, DoctorWorkload{DoctorID: id, Appointments: perDoctor[id]})
	}
	return p
}
