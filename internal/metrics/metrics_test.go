package metrics

import (
	"io"
	"math"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"armor-aim/internal/domain/entity"
)

func scrape(t *testing.T, r *Recorder) string {
	t.Helper()
	srv := httptest.NewServer(r.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func TestRecorder_Observe(t *testing.T) {
	r := NewRecorder()
	r.Observe(&entity.FrameResult{
		LightBars: make([]entity.LightBar, 3),
		Armors: []entity.Armor{
			{Type: entity.ArmorSmall, Distance: 1800, Digit: 3},
			{Type: entity.ArmorLarge, Distance: math.NaN(), Digit: entity.DigitUnknown},
		},
		Elapsed: 4 * time.Millisecond,
	})
	r.Observe(&entity.FrameResult{})
	r.Observe(nil)

	body := scrape(t, r)
	require.Contains(t, body, "aim_frames_total 2")
	require.Contains(t, body, "aim_light_bars_total 3")
	require.Contains(t, body, `aim_armors_total{type="small"} 1`)
	require.Contains(t, body, `aim_armors_total{type="large"} 1`)
	require.Contains(t, body, "aim_pose_failures_total 1")
	require.Contains(t, body, "aim_digits_recognized_total 1")
	require.Contains(t, body, "aim_frame_duration_seconds_count 2")
}
