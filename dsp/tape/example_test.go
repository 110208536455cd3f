package tape_test

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-tape/dsp/tape"
)

func Example() {
	left, err := tape.NewProcessor(48000,
		tape.WithMachine(tape.MachineStuder),
		tape.WithFormula(tape.FormulaSM900),
	)
	if err != nil {
		panic(err)
	}

	right, err := tape.NewProcessor(48000,
		tape.WithMachine(tape.MachineStuder),
		tape.WithFormula(tape.FormulaSM900),
	)
	if err != nil {
		panic(err)
	}

	// Stereo operation: one processor per channel, the second channel
	// carrying the azimuth delay.
	for i := 0; i < 480; i++ {
		x := 0.316 * math.Sin(2*math.Pi*1000*float64(i)/48000)
		_ = left.ProcessSample(x)
		_ = right.ProcessSecondChannel(x)
	}

	cfg := left.Config()
	fmt.Printf("%s/%s: azimuth delay %g us, dispersive base %g Hz\n",
		left.Machine(), left.Formula(), cfg.ChannelDelayMicros, cfg.DispersiveHz)

	// Output:
	// studer/sm900: azimuth delay 12 us, dispersive base 2800 Hz
}
