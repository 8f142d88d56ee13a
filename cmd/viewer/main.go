//
// Copyright 2019 Google Inc. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS-IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
//
// Package main is a compute-only driver for the trace-analytics core: it
// loads a trace file, builds a View, and runs a fixed scripted tick
// sequence exercising pan, zoom, mode toggle, and drag-to-zoom, printing
// the resulting draw command summary, frame-rate stats, and wake/park
// listings to stdout. It owns no window or GPU context -- an interactive
// frontend would dispatch real input instead of the scripted ticks below,
// reusing everything else unchanged.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	log "github.com/golang/glog"

	"github.com/sujayakar/cyclotron/draw"
	"github.com/sujayakar/cyclotron/tracestore"
	"github.com/sujayakar/cyclotron/view"
)

var (
	showFramerate   = flag.Bool("show-framerate", false, "Print periodic FPS stats to stdout.")
	targetFramerate = flag.Float64("target-framerate", 60, "The frame rate the scripted tick loop simulates.")
	noWakesPrinting = flag.Bool("no-wakes-printing", false, "Omit the wake/park listing for the final selection.")
	cacheSize       = flag.Int("cache_size", 8, "The maximum number of trace sessions to keep resident at once.")
)

func main() {
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: viewer [flags] <trace-path>")
		os.Exit(1)
	}
	if err := run(flag.Arg(0)); err != nil {
		log.Errorf("viewer: %v", err)
		os.Exit(1)
	}
}

func run(path string) error {
	store, err := tracestore.New(*cacheSize)
	if err != nil {
		return fmt.Errorf("creating trace store: %w", err)
	}

	sess, err := store.Get(path)
	if err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	log.Infof("viewer: loaded session %s: %d tasks, %d names", sess.ID, sess.DB.TaskCount(), sess.DB.NameCount())

	v := view.New(sess.Layout)
	frameInterval := time.Duration(float64(time.Second) / *targetFramerate)

	var frames int
	start := time.Now()
	tick := func() {
		frames++
		time.Sleep(frameInterval)
		if *showFramerate {
			elapsed := time.Since(start)
			fps := float64(frames) / elapsed.Seconds()
			fmt.Printf("frame %d: %.1f fps (target %.1f)\n", frames, fps, *targetFramerate)
		}
	}

	// Scripted tick sequence: pan right, zoom in anchored at the cursor,
	// toggle to Profile mode and back, then a drag-to-zoom gesture.
	v.Hover(sess.Layout, view.Point{X: 0.5, Y: 0.1})
	tick()

	v.Scroll(sess.Layout, 50, 0)
	tick()

	v.Hover(sess.Layout, view.Point{X: 0.3, Y: 0.5})
	v.Scroll(sess.Layout, 0, 20)
	tick()

	v.ToggleMode(sess.Layout)
	tick()
	v.ToggleMode(sess.Layout)
	tick()

	v.Hover(sess.Layout, view.Point{X: 0.2, Y: 0.5})
	v.BeginDrag()
	time.Sleep(120 * time.Millisecond)
	v.Hover(sess.Layout, view.Point{X: 0.6, Y: 0.5})
	v.EndDrag(sess.Layout)
	tick()

	cmds := v.DrawCommands()
	summarizeCommands(cmds)

	if !*noWakesPrinting {
		printWakes(sess, v)
	}

	return nil
}

func summarizeCommands(cmds []draw.Command) {
	var boxes, labels, simple int
	for _, c := range cmds {
		switch c.(type) {
		case draw.BoxList:
			boxes++
		case draw.LabelList:
			labels++
		case draw.SimpleBox:
			simple++
		}
	}
	fmt.Printf("draw commands: %d box lists, %d label lists, %d simple boxes\n", boxes, labels, simple)
}

func printWakes(sess *tracestore.Session, v *view.View) {
	sel, ok := v.Selection()
	if !ok || !sel.IsSpan {
		return
	}
	task := sel.Task
	wakes := sess.DB.Wakes(task)
	parks := sess.DB.Parks(task)
	fmt.Printf("task %s: %d wakes issued, %d parks resolved\n", task, len(wakes), len(parks))
	for _, w := range wakes {
		fmt.Printf("  woke %s at %dns\n", w.Other, w.Nanos)
	}
	for _, p := range parks {
		fmt.Printf("  woken by %s at %dns\n", p.Other, p.Nanos)
	}
}
