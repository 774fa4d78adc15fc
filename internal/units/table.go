package units

// Milliliters per volume unit.
const (
	MLPerTeaspoon   = 4.92892
	MLPerTablespoon = 14.7868
	MLPerFluidOunce = 29.5735
	MLPerCup        = 236.588
	MLPerPint       = 473.176
	MLPerQuart      = 946.353
	MLPerGallon     = 3785.411
	MLPerLiter      = 1000.0
	MLPerMilliliter = 1.0
)

// Grams per weight unit.
const (
	GramsPerGram     = 1.0
	GramsPerKilogram = 1000.0
	GramsPerOunce    = 28.3495
	GramsPerPound    = 453.592
)

// Count units all equal one discrete item, so a can and a bunch add up the same way.
var standardDefinitions = []Definition{
	{Canonical: "tsp", Aliases: []string{"teaspoon", "teaspoons", "tsps"}, Type: Volume, ToBaseFactor: MLPerTeaspoon},
	{Canonical: "tbsp", Aliases: []string{"tablespoon", "tablespoons", "tbsps", "tbs", "tbl"}, Type: Volume, ToBaseFactor: MLPerTablespoon},
	{Canonical: "floz", Aliases: []string{"fl-oz", "fluid-ounce", "fluid-ounces"}, Type: Volume, ToBaseFactor: MLPerFluidOunce},
	{Canonical: "cup", Aliases: []string{"cups", "c"}, Type: Volume, ToBaseFactor: MLPerCup},
	{Canonical: "pint", Aliases: []string{"pints", "pt", "pts"}, Type: Volume, ToBaseFactor: MLPerPint},
	{Canonical: "quart", Aliases: []string{"quarts", "qt", "qts"}, Type: Volume, ToBaseFactor: MLPerQuart},
	{Canonical: "gallon", Aliases: []string{"gallons", "gal", "gals"}, Type: Volume, ToBaseFactor: MLPerGallon},
	{Canonical: "ml", Aliases: []string{"milliliter", "milliliters", "millilitre", "millilitres", "mls"}, Type: Volume, ToBaseFactor: MLPerMilliliter},
	{Canonical: "l", Aliases: []string{"liter", "liters", "litre", "litres"}, Type: Volume, ToBaseFactor: MLPerLiter},

	{Canonical: "g", Aliases: []string{"gram", "grams", "gr"}, Type: Weight, ToBaseFactor: GramsPerGram},
	{Canonical: "kg", Aliases: []string{"kilogram", "kilograms", "kgs", "kilo", "kilos"}, Type: Weight, ToBaseFactor: GramsPerKilogram},
	{Canonical: "oz", Aliases: []string{"ounce", "ounces"}, Type: Weight, ToBaseFactor: GramsPerOunce},
	{Canonical: "lb", Aliases: []string{"lbs", "pound", "pounds"}, Type: Weight, ToBaseFactor: GramsPerPound},

	{Canonical: "each", Aliases: []string{"ea", "whole", "item", "items"}, Type: Count, ToBaseFactor: 1},
	{Canonical: "piece", Aliases: []string{"pieces", "pc", "pcs"}, Type: Count, ToBaseFactor: 1},
	{Canonical: "egg", Aliases: []string{"eggs"}, Type: Count, ToBaseFactor: 1},
	{Canonical: "clove", Aliases: []string{"cloves"}, Type: Count, ToBaseFactor: 1},
	{Canonical: "bunch", Aliases: []string{"bunches"}, Type: Count, ToBaseFactor: 1},
	{Canonical: "can", Aliases: []string{"cans", "tin", "tins"}, Type: Count, ToBaseFactor: 1},
	{Canonical: "bag", Aliases: []string{"bags"}, Type: Count, ToBaseFactor: 1},
	{Canonical: "head", Aliases: []string{"heads"}, Type: Count, ToBaseFactor: 1},
	{Canonical: "jar", Aliases: []string{"jars"}, Type: Count, ToBaseFactor: 1},
	{Canonical: "bottle", Aliases: []string{"bottles"}, Type: Count, ToBaseFactor: 1},
	{Canonical: "box", Aliases: []string{"boxes"}, Type: Count, ToBaseFactor: 1},
	{Canonical: "package", Aliases: []string{"packages", "pkg", "pkgs", "pack", "packs"}, Type: Count, ToBaseFactor: 1},
	{Canonical: "stalk", Aliases: []string{"stalks"}, Type: Count, ToBaseFactor: 1},
	{Canonical: "sprig", Aliases: []string{"sprigs"}, Type: Count, ToBaseFactor: 1},
	{Canonical: "slice", Aliases: []string{"slices"}, Type: Count, ToBaseFactor: 1},
	{Canonical: "loaf", Aliases: []string{"loaves"}, Type: Count, ToBaseFactor: 1},
	{Canonical: "fillet", Aliases: []string{"fillets"}, Type: Count, ToBaseFactor: 1},
}
