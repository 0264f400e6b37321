package core

// Process-wide instance tables, indexed by entity id. Entities are
// created once at startup by the Config* calls in dependency order and
// live until shutdown. Accessors return nil for ids that are out of
// range or were never configured; callers treat nil as a no-op handle.
var (
	leds         [MaxLED]*LED
	lightSensors [MaxLightSensor]*LightSensor
	piezos       [MaxPiezos]*PiezoSensor
	piezoGroups  [MaxPiezoGroups]*PiezoSensorGroup
	lrss         [MaxLRS]*LRS
	crss         [MaxCRS]*CRS
	fishes       [MaxFish]*Fish
	jellyfishes  [MaxJellyfish]*Jellyfish
	aquariums    [MaxAquariums]*Aquarium
)

// Reset clears every instance table and uninstalls the HAL drivers,
// returning the core to its pre-startup state. Tests restart the
// lifecycle through this; production code never calls it.
func Reset() {
	leds = [MaxLED]*LED{}
	lightSensors = [MaxLightSensor]*LightSensor{}
	piezos = [MaxPiezos]*PiezoSensor{}
	piezoGroups = [MaxPiezoGroups]*PiezoSensorGroup{}
	lrss = [MaxLRS]*LRS{}
	crss = [MaxCRS]*CRS{}
	fishes = [MaxFish]*Fish{}
	jellyfishes = [MaxJellyfish]*Jellyfish{}
	aquariums = [MaxAquariums]*Aquarium{}

	servoDriver = nil
	analogDriver = nil
	digitalDriver = nil
	nvDriver = nil
	clockDriver = nil
}
