package enums

type SoilType string

const (
	SoilLoam  SoilType = "loam"
	SoilClay  SoilType = "clay"
	SoilSandy SoilType = "sandy"
	SoilSilt  SoilType = "silt"
	SoilPeat  SoilType = "peat"
)

func (s SoilType) IsValid() bool {
	switch s {
	case SoilLoam, SoilClay, SoilSandy, SoilSilt, SoilPeat:
		return true
	}
	return false
}

type IrrigationType string

const (
	IrrigationDrip      IrrigationType = "drip"
	IrrigationSprinkler IrrigationType = "sprinkler"
	IrrigationFlood     IrrigationType = "flood"
	IrrigationNone      IrrigationType = "none"
)

func (i IrrigationType) IsValid() bool {
	switch i {
	case IrrigationDrip, IrrigationSprinkler, IrrigationFlood, IrrigationNone:
		return true
	}
	return false
}
