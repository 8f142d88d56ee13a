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
// Package draw defines the value-typed draw command stream a view tick
// produces: pure data describing what an external renderer should paint,
// with no pointers into a tracedata.Database or layout.Layout. Every
// cross-reference goes via a RowKey or NameId.
package draw

import "github.com/sujayakar/cyclotron/tracedata"

// Color is a normalized (non-premultiplied) RGBA color.
type Color struct {
	R, G, B, A float32
}

// SimpleRegion is an axis-aligned rectangle in unit viewport coordinates:
// [0,1] left-to-right, bottom-to-top.
type SimpleRegion struct {
	Left, Right, Top, Bottom float32
}

// Region maps a logical (time) range onto a normalized rectangle: the
// horizontal axis spans [LogicalBase, LogicalLimit) seconds, the vertical
// axis spans [VerticalBase, VerticalLimit) row units.
type Region struct {
	VerticalBase, VerticalLimit float32
	LogicalBase, LogicalLimit   float32
}

// RowKey identifies a single Fore or Back chunk within a Layout, for the
// renderer to look up its preassembled BoxListData by.
type RowKey struct {
	Thread int
	Row    int
	// Back selects the Back chunk when true, the Fore chunk when false.
	Back bool
}

// LabelRowKey identifies the Labels chunk of a single row.
type LabelRowKey struct {
	Thread int
	Row    int
}

// SpanRange is a half-open index range [Begin, End) into a RowKey's chunk,
// the sub-slice the renderer should actually draw this frame.
type SpanRange struct {
	Begin, End int
}

// Command is one instruction in a frame's draw command stream.
type Command interface {
	isCommand()
}

// SimpleBox draws a single flat-colored rectangle: selection highlights,
// drag-to-zoom marquees, and profile-mode aggregate bars.
type SimpleBox struct {
	Color  Color
	Region SimpleRegion
}

func (SimpleBox) isCommand() {}

// BoxList draws the sub-slice [Range.Begin, Range.End) of the chunk
// identified by Key, projected into Region. NameToHighlight, if non-nil,
// recolors entries matching that name with HighlightColor instead of Color.
type BoxList struct {
	Key             RowKey
	Range           SpanRange
	Color           Color
	NameToHighlight *tracedata.NameId
	HighlightColor  Color
	Region          Region
}

func (BoxList) isCommand() {}

// LabelList draws one glyph run per task recorded in the Labels chunk
// identified by Key, projected into Region. The renderer clips each
// label's text to its task's visible horizontal extent.
type LabelList struct {
	Key    LabelRowKey
	Region Region
}

func (LabelList) isCommand() {}
