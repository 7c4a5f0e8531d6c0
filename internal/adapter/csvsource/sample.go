package csvsource

// SampleFilename is the attachment name used when serving the sample CSV.
const SampleFilename = "sample_express_parcel.csv"

// SampleCSV is the reference upload used for onboarding and as a test
// fixture. Rows cover most of the facility table and a spread of
// destinations wide enough to make the map view interesting.
const SampleCSV = `id,created_time,warehouse_name,shipto_postal_code,shipto_city,shipto_state,shipto_country_code,carrier,biz_type,gw,vol,pkg_num
1,3/15/24 10:30,NJ9,10001,New York,NY,US,FedEx,Express,2.5,0.01,1
2,3/15/24 11:45,TX8828,90210,Beverly Hills,CA,US,UPS,Standard,1.8,0.008,1
3,3/15/24 14:20,CA-LA,60601,Chicago,IL,US,DHL,Express,3.2,0.015,2
4,3/16/24 09:15,NJ8,33101,Miami,FL,US,FedEx,Standard,2.1,0.012,1
5,3/16/24 16:30,WNT485,98101,Seattle,WA,US,UPS,Express,4.5,0.025,3
6,3/17/24 08:45,IL-CHI,02101,Boston,MA,US,USPS,Standard,1.9,0.009,1
7,3/17/24 13:20,TX8829,30301,Atlanta,GA,US,DHL,Express,3.8,0.018,2
8,3/18/24 10:15,WNT486,75201,Dallas,TX,US,FedEx,Standard,2.7,0.013,1
9,3/18/24 15:40,CA-SF,80202,Denver,CO,US,UPS,Express,5.2,0.028,4
10,3/19/24 11:25,GA-ATL,85001,Phoenix,AZ,US,DHL,Standard,3.1,0.016,2
11,3/19/24 14:50,NJ7,19101,Philadelphia,PA,US,FedEx,Express,2.3,0.011,1
12,3/20/24 09:30,FL-MIA,37201,Nashville,TN,US,UPS,Standard,4.1,0.022,3
13,3/20/24 16:15,IL9,55401,Minneapolis,MN,US,USPS,Express,1.6,0.007,1
14,3/21/24 12:00,NJ9,97201,Portland,OR,US,DHL,Standard,3.5,0.017,2
15,3/21/24 17:30,TX8828,63101,St. Louis,MO,US,FedEx,Express,2.9,0.014,1
`
