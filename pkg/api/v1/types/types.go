package types

type PlantType string

var PlantTypeModbus = PlantType("modbus")
var PlantTypeDummy = PlantType("dummy")
