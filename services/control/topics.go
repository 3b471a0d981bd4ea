package control

import "plantcode-go/bus"

// Subscribed.
var (
	topicConfigAll = bus.Topic{"config", bus.WildAll}
	topicCtrlAll   = bus.Topic{"ctrl", bus.WildAll}
)

// Published (all retained).
var (
	topicStateLink  = bus.Topic{"state", "link"}
	topicStatePump  = bus.Topic{"state", "pump"}
	topicStateServo = bus.Topic{"state", "servo"}
	topicValSmooth  = bus.Topic{"value", "smooth"}
	topicValAir     = bus.Topic{"value", "air"}
)

func topicValSoil(label string) bus.Topic {
	return bus.Topic{"value", "soil", label}
}
