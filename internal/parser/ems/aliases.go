package ems

type recordKind int

const (
	recordCustomer recordKind = iota + 1
	recordVehicle
	recordEstimate
	recordClaim
	recordPart
	recordLabor
	recordTotals
)

// recordTypes maps the leading field of a line to its record kind.
var recordTypes = map[string]recordKind{
	"CUST": recordCustomer, "CUSTOMER": recordCustomer, "OWNER": recordCustomer, "OWN": recordCustomer, "INSD": recordCustomer,
	"VEH": recordVehicle, "VEHICLE": recordVehicle,
	"EST": recordEstimate, "ESTIMATE": recordEstimate, "HDR": recordEstimate,
	"CLM": recordClaim, "CLAIM": recordClaim,
	"PART": recordPart, "PRT": recordPart, "LIN": recordPart,
	"LABOR": recordLabor, "LBR": recordLabor, "LAB": recordLabor,
	"TOT": recordTotals, "TOTAL": recordTotals, "TTL": recordTotals,
}

// aliasTable lists accepted keys per canonical field.
type aliasTable map[string][]string

func (t aliasTable) reverse() map[string]string {
	out := make(map[string]string)
	for canonical, aliases := range t {
		out[canonical] = canonical
		for _, a := range aliases {
			out[a] = canonical
		}
	}
	return out
}

var fieldAliases = map[recordKind]map[string]string{
	recordCustomer: aliasTable{
		"first_name":        {"fname", "first", "firstname", "own_fn", "owner_first", "given_name"},
		"last_name":         {"lname", "last", "lastname", "own_ln", "owner_last", "surname"},
		"full_name":         {"name", "fullname", "owner_name", "customer_name", "own_name"},
		"phone":             {"phone_number", "phone1", "own_ph1", "home_phone", "cell", "cell_phone", "tel"},
		"email":             {"email_address", "e_mail", "own_email", "mail"},
		"address":           {"addr", "addr1", "address1", "street", "own_addr1"},
		"city":              {"own_city", "town"},
		"state":             {"st", "own_st", "province"},
		"zip":               {"zip_code", "postal", "postal_code", "own_zip"},
		"insurance_company": {"insurer", "ins_co", "ins_co_nm", "carrier", "insurance"},
	}.reverse(),
	recordVehicle: aliasTable{
		"year":         {"yr", "model_year", "v_model_yr", "veh_year"},
		"make":         {"mk", "v_makedesc", "make_desc", "veh_make"},
		"model":        {"mdl", "v_model", "model_name", "veh_model"},
		"vin":          {"vin_no", "vehicle_id", "v_vin", "vin_number"},
		"license":      {"plate", "license_plate", "plate_no", "v_license", "lic"},
		"mileage":      {"miles", "odometer", "odo", "v_mileage"},
		"color":        {"colour", "v_color", "paint"},
		"engine":       {"eng", "v_engine"},
		"transmission": {"trans", "v_trans"},
	}.reverse(),
	recordEstimate: aliasTable{
		"estimate_number": {"number", "est_no", "estimate_no", "est_num", "ro", "ro_number", "id"},
		"estimate_date":   {"date", "est_date", "create_date"},
		"estimator":       {"estimator_name", "est_name", "appraiser", "writer"},
		"shop_name":       {"shop", "rf_co_nm", "repair_facility", "facility"},
		"version":         {"ver", "ems_ver", "est_ver"},
	}.reverse(),
	recordClaim: aliasTable{
		"claim_number":      {"claim", "clm_no", "claim_no", "clm_num"},
		"policy_number":     {"policy", "policy_no", "plcy_no"},
		"insurance_company": {"insurer", "ins_co", "ins_co_nm", "carrier", "insurance"},
		"adjuster":          {"adjuster_name", "adj_name", "clmt_adj"},
		"deductible":        {"ded", "ded_amt", "deductible_amount"},
		"loss_date":         {"loss_dt", "date_of_loss", "dol"},
	}.reverse(),
	recordPart: aliasTable{
		"line":           {"line_no", "line_number", "line_num", "seq"},
		"description":    {"desc", "line_desc", "part_desc"},
		"part_number":    {"part_no", "part_num", "oem_partno", "partno"},
		"part_type":      {"type", "part_typ", "source"},
		"operation":      {"op", "mod_lbr_ty", "oper"},
		"quantity":       {"qty", "part_qty", "count"},
		"unit_price":     {"price", "act_price", "db_price", "unit"},
		"extended_price": {"ext_price", "extended", "amount", "total", "line_total"},
	}.reverse(),
	recordLabor: aliasTable{
		"line":        {"line_no", "line_number", "line_num", "seq"},
		"description": {"desc", "line_desc", "labor_desc"},
		"operation":   {"op", "lbr_op", "oper"},
		"labor_type":  {"type", "lbr_type", "mod_lbr_ty"},
		"hours":       {"hrs", "lbr_hrs", "mod_lb_hrs", "labor_hours"},
		"rate":        {"lbr_rate", "hourly_rate", "labor_rate"},
		"amount":      {"amt", "lbr_amt", "ext_price", "extended", "total"},
	}.reverse(),
	recordTotals: aliasTable{
		"parts_total": {"parts", "part_total", "tot_parts", "parts_amt"},
		"labor_total": {"labor", "lbr_total", "tot_labor", "labor_amt"},
		"tax_total":   {"tax", "tax_amt", "sales_tax", "tot_tax"},
		"grand_total": {"grand", "total", "net_total", "tot_amt", "g_ttl_amt"},
	}.reverse(),
}

// positionalColumns gives the column order for values without a key.
var positionalColumns = map[recordKind][]string{
	recordCustomer: {"first_name", "last_name", "phone", "email", "address", "city", "state", "zip", "insurance_company"},
	recordVehicle:  {"year", "make", "model", "vin", "license", "mileage", "color", "engine", "transmission"},
	recordEstimate: {"estimate_number", "estimate_date", "estimator", "shop_name", "version"},
	recordClaim:    {"claim_number", "policy_number", "insurance_company", "adjuster", "deductible", "loss_date"},
	recordPart:     {"line", "description", "part_number", "quantity", "unit_price", "extended_price", "part_type", "operation"},
	recordLabor:    {"line", "description", "operation", "hours", "rate", "amount", "labor_type"},
	recordTotals:   {"parts_total", "labor_total", "tax_total", "grand_total"},
}
