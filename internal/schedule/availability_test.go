package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/telecare/scheduler/internal/model"
)

func profileWithBlocks(blocks ...model.TimeBlock) *model.AvailabilityProfile {
	return &model.AvailabilityProfile{
		WorkingHours: model.DefaultWorkingHours(),
		TimeBlocks:   blocks,
	}
}

func TestIsBookableInsideWorkingHours(t *testing.T) {
	profile := profileWithBlocks()

	assert.True(t, IsBookable(profile, "monday", "10:00", "10:30"))
	assert.True(t, IsBookable(profile, "monday", "09:00", "17:00"))
}

func TestIsBookableOutsideWorkingHours(t *testing.T) {
	profile := profileWithBlocks()

	assert.False(t, IsBookable(profile, "monday", "08:00", "08:30"))
	assert.False(t, IsBookable(profile, "monday", "16:45", "17:15"))
	// weekend is unavailable in the default template
	assert.False(t, IsBookable(profile, "sunday", "10:00", "10:30"))
}

func TestIsBookableLunchCarveOut(t *testing.T) {
	profile := profileWithBlocks(model.TimeBlock{
		Day: "monday", StartTime: "12:00", EndTime: "13:00", Available: false,
	})

	assert.False(t, IsBookable(profile, "monday", "12:15", "12:45"))
	// touching the block boundary is fine, half-open semantics
	assert.True(t, IsBookable(profile, "monday", "13:00", "13:30"))
	assert.True(t, IsBookable(profile, "monday", "11:30", "12:00"))

	// removing the block restores bookability
	assert.True(t, IsBookable(profileWithBlocks(), "monday", "12:15", "12:45"))
}

func TestIsBookableGrantingBlockHasNoEffectOutsideHours(t *testing.T) {
	// A granting block cannot widen beyond working hours: the working
	// hours bound is checked first.
	profile := profileWithBlocks(model.TimeBlock{
		Day: "monday", StartTime: "18:00", EndTime: "20:00", Available: true,
	})
	assert.False(t, IsBookable(profile, "monday", "18:00", "18:30"))
}

func TestIsBookableFirstMatchingBlockWins(t *testing.T) {
	profile := profileWithBlocks(
		model.TimeBlock{Day: "monday", StartTime: "10:00", EndTime: "11:00", Available: false},
		model.TimeBlock{Day: "monday", StartTime: "10:00", EndTime: "11:00", Available: true},
	)

	assert.False(t, IsBookable(profile, "monday", "10:15", "10:45"))

	reversed := profileWithBlocks(
		model.TimeBlock{Day: "monday", StartTime: "10:00", EndTime: "11:00", Available: true},
		model.TimeBlock{Day: "monday", StartTime: "10:00", EndTime: "11:00", Available: false},
	)
	assert.True(t, IsBookable(reversed, "monday", "10:15", "10:45"))
}

func TestIsBookableIgnoresOtherDayBlocks(t *testing.T) {
	profile := profileWithBlocks(model.TimeBlock{
		Day: "tuesday", StartTime: "09:00", EndTime: "17:00", Available: false,
	})
	assert.True(t, IsBookable(profile, "monday", "10:00", "10:30"))
}
