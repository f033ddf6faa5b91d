package catalog

// Idle is the action every sequence starts from.
const Idle ActionID = "IdleStanding"

var defaultAnimations = []ActionID{
	"WalkWhileTexting", "TextWhileWalking", "TextWhileStanding",
	"TalkOnPhoneStanding", "TalkOnPhoneWalking",
	"LookBehindCautiously", "LookAroundNervously",
	"PutObjectOnGround", "PickUpFromGround", "PickUpFromBox",
	"PlaceInBox", "ClimbStairs", Idle,
	"TurnLeftWhileWalking", "TurnRightWhileWalking",
	"BuryObjectUnderground", "Rummaging",
	"RaiseRightArmForward", "OpenDoorForward",
}

// Object hand-offs start the countdown to the end of a sequence.
var defaultTriggers = []ActionID{
	"PutObjectOnGround",
	"PickUpFromGround",
	"PickUpFromBox",
}

// Default returns the built-in animation catalog.
func Default() *Catalog {
	c, err := New(defaultAnimations, defaultTriggers)
	if err != nil {
		panic(err)
	}
	return c
}
