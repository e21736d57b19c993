package rig

import (
	"fmt"
	"strings"

	"github.com/dysperse/rigpanel/common"
)

// Scene is a named ambient lighting command. Command is sent to the server
// verbatim; its bytes are the controller's own wire format.
type Scene struct {
	Name    string
	Command string
}

// Scenes is the static scene table shown by every front end.
var Scenes = []Scene{
	{Name: "On", Command: "7e0004f00001ff00ef"},
	{Name: "Off", Command: "7e0004000000ff00ef"},
	{Name: "Red", Command: "7e000503ff000000ef"},
	{Name: "Green", Command: "7e00050300ff0000ef"},
	{Name: "Blue", Command: "7e0005030000ff00ef"},
	{Name: "White", Command: "7e000503ffffff00ef"},
	{Name: "Warm", Command: "7e000503ff8c2000ef"},
	{Name: "Purple", Command: "7e0005038000ff00ef"},
	{Name: "Dim", Command: "7e0001011e000000ef"},
	{Name: "Bright", Command: "7e00010164000000ef"},
}

// LookupScene finds a scene by name (case-insensitive) or by its command.
func LookupScene(nameOrCommand string) (Scene, error) {
	key := strings.TrimSpace(nameOrCommand)
	for _, sc := range Scenes {
		if strings.EqualFold(sc.Name, key) || strings.EqualFold(sc.Command, key) {
			return sc, nil
		}
	}
	return Scene{}, fmt.Errorf("%w: %q", common.ErrUnknownScene, nameOrCommand)
}
