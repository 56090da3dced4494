package scenario

import (
	"fmt"
	"strings"

	"golang.org/x/exp/rand"
)

// ClickType is the mouse button a task requires.
type ClickType int

const (
	ClickLeft ClickType = iota
	ClickRight
)

func (ct ClickType) String() string {
	switch ct {
	case ClickLeft:
		return "left"
	case ClickRight:
		return "right"
	}
	return fmt.Sprintf("ClickType(%d)", int(ct))
}

// TemplateID indexes the instruction template table.
type TemplateID int

// TaskDescription is the instruction shown to the agent and the click it demands.
// Text and Click always come from the same template entry.
type TaskDescription struct {
	Text     string
	Click    ClickType
	Template TemplateID
}

type taskTemplate struct {
	Pattern string // one %s, the normalized class name
	Click   ClickType
}

// The table is the only place instruction phrasing and click type are paired.
var taskTemplates = [...]taskTemplate{
	{"left click on the %s", ClickLeft},
	{"right click on the %s", ClickRight},
	{"Please select the %s by clicking it", ClickLeft},
	{"Go ahead and left click on the %s", ClickLeft},
	{"Go ahead and right click on the %s", ClickRight},
	{"Use the mouse to select the %s", ClickLeft},
	{"Find and left click on the %s", ClickLeft},
	{"Find and right click on the %s", ClickRight},
	{"Choose the %s with a right click", ClickRight},
	{"Interact with the %s by left clicking it", ClickLeft},
	{"Interact with the %s by right clicking it", ClickRight},
	{"Point and left click on the %s", ClickLeft},
	{"Point and right click on the %s", ClickRight},
	{"Activate the %s by left clicking", ClickLeft},
	{"Direct your left click towards the %s", ClickLeft},
	{"Direct your right click towards the %s", ClickRight},
	{"Move the mouse to %s and left click", ClickLeft},
	{"Move the mouse to %s and right click", ClickRight},
	{"Click on the %s to continue", ClickLeft},
	{"Click on the %s to proceed", ClickLeft},
	{"Select the %s to continue", ClickLeft},
}

// NumTemplates is the size of the instruction template table.
const NumTemplates = len(taskTemplates)

// NormalizeLabel turns a class label into natural language: lower case, underscores as spaces.
func NormalizeLabel(label string) string {
	return strings.ReplaceAll(strings.ToLower(label), "_", " ")
}

// Describe renders template id for the passed class label.
func Describe(id TemplateID, label string) TaskDescription {
	tmpl := taskTemplates[id]
	return TaskDescription{
		Text:     fmt.Sprintf(tmpl.Pattern, NormalizeLabel(label)),
		Click:    tmpl.Click,
		Template: id,
	}
}

// DescribeTask picks a template uniformly and renders it for label.
func DescribeTask(rng *rand.Rand, label string) TaskDescription {
	return Describe(TemplateID(rng.Intn(NumTemplates)), label)
}
